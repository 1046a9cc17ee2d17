package gracejoin

import (
	"os"
	"strconv"

	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

const (
	DefaultPageSize  = 4096
	DefaultMaxPasses = 5
)

// Options configures one GraceHashJoin.
type Options struct {
	// WorkMem is the number of pages the join may use. One page streams the
	// input being partitioned, leaving WorkMem-1 partitions per pass, and a
	// partition can be built from when it spans at most WorkMem-2 pages.
	WorkMem int `validate:"gte=3"`
	// PageSize is the page size in bytes used to turn record counts into
	// page counts.
	PageSize int `validate:"gte=1"`
	// MaxPasses bounds the recursion depth. Passes are numbered from 1.
	MaxPasses int `validate:"gte=1"`
	// TempDir holds the scratch file partitions spill into.
	TempDir string `validate:"-"`
	// Codec encodes spilled records. Defaults to MsgpackMaUn.
	Codec MarshalUnmarshaler `validate:"-"`
	// Hash assigns join keys to partitions. Defaults to HashValue.
	Hash   HashFunc        `validate:"-"`
	Logger *zerolog.Logger `validate:"-"`
}

var validate = validator.New()

// withDefaults returns a copy of o with unset fields filled in and checks
// the result.
func (o *Options) withDefaults() (Options, error) {
	var res Options
	if o != nil {
		res = *o
	}
	if res.PageSize == 0 {
		res.PageSize = DefaultPageSize
	}
	if res.MaxPasses == 0 {
		res.MaxPasses = DefaultMaxPasses
	}
	if res.TempDir == "" {
		res.TempDir = os.TempDir()
	}
	if res.Codec == nil {
		res.Codec = MsgpackMaUn
	}
	if res.Hash == nil {
		res.Hash = HashValue
	}
	if res.Logger == nil {
		res.Logger = DefaultLogger()
	}
	if err := validate.Struct(res); err != nil {
		return res, errors.WithSecondaryError(errors.Wrap(ErrInvalidOptions, "validating options"), err)
	}
	return res, nil
}

// OptionsFromEnv reads GHJ_WORK_MEM, GHJ_PAGE_SIZE, GHJ_MAX_PASSES and
// GHJ_TEMP_DIR. Unset variables leave the field at its default.
func OptionsFromEnv() (*Options, error) {
	workMem, err := getEnvOrDefaultInt("GHJ_WORK_MEM", 0)
	if err != nil {
		return nil, err
	}
	pageSize, err := getEnvOrDefaultInt("GHJ_PAGE_SIZE", DefaultPageSize)
	if err != nil {
		return nil, err
	}
	maxPasses, err := getEnvOrDefaultInt("GHJ_MAX_PASSES", DefaultMaxPasses)
	if err != nil {
		return nil, err
	}
	return &Options{
		WorkMem:   workMem,
		PageSize:  pageSize,
		MaxPasses: maxPasses,
		TempDir:   getEnvOrDefault("GHJ_TEMP_DIR", ""),
	}, nil
}

func getEnvOrDefault(env, defaultVal string) string {
	if e := os.Getenv(env); e != "" {
		return e
	}
	return defaultVal
}

func getEnvOrDefaultInt(env string, defaultVal int) (int, error) {
	e := os.Getenv(env)
	if e == "" {
		return defaultVal, nil
	}
	n, err := strconv.Atoi(e)
	if err != nil {
		return 0, errors.WithSecondaryError(errors.Wrapf(ErrInvalidOptions, "parsing %s", env), err)
	}
	return n, nil
}
