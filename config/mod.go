// Package config loads the shared group parameters from a config file.
// This is the trust boundary for domain parameters: the protocol core
// assumes a vetted prime and independent generators and never re-checks
// them. Load only enforces structure (parseability, ranges, distinct
// generators) — primality and generator independence stay the supplier's
// responsibility.
package config

import (
	"math/big"

	"github.com/spf13/viper"
	"golang.org/x/xerrors"

	"verimix/group"
)

// Load reads group parameters from the file at path. Supported formats
// are whatever viper infers from the extension (JSON, YAML, TOML). The
// expected keys are "prime", "g" and "h", all base-10 strings or numbers.
func Load(path string) (group.Params, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return group.Params{}, xerrors.Errorf("config: reading %s: %v", path, err)
	}

	params := group.Params{}
	var err error
	if params.P, err = parseInt(v.GetString("prime")); err != nil {
		return group.Params{}, xerrors.Errorf("config: prime: %v", err)
	}
	if params.G, err = parseInt(v.GetString("g")); err != nil {
		return group.Params{}, xerrors.Errorf("config: g: %v", err)
	}
	if params.H, err = parseInt(v.GetString("h")); err != nil {
		return group.Params{}, xerrors.Errorf("config: h: %v", err)
	}

	if err := params.Validate(); err != nil {
		return group.Params{}, err
	}
	return params, nil
}

func parseInt(s string) (*big.Int, error) {
	if s == "" {
		return nil, xerrors.New("missing value")
	}
	n, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, xerrors.Errorf("not a base-10 integer: %q", s)
	}
	return n, nil
}
