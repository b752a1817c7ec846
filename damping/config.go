/*
 * MIT License
 *
 * Copyright (c) 2021 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

package damping

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/dachinzo/ringpop-node/errs"
)

// Config carries exactly the recognized configuration keys of spec §6. Tags
// follow this codebase's convention of exposing every field to
// mapstructure/json/yaml/toml simultaneously, so the same struct loads from
// a viper source regardless of the file format an operator chooses.
type Config struct {
	// NVal is the number of observers contacted per fan-out round.
	NVal int `mapstructure:"damp_req_n_val" json:"damp_req_n_val" yaml:"damp_req_n_val" toml:"damp_req_n_val" validate:"min=1"`

	// RVal is the quorum size: successful responses required to decide.
	RVal int `mapstructure:"damp_req_r_val" json:"damp_req_r_val" yaml:"damp_req_r_val" toml:"damp_req_r_val" validate:"min=1"`

	// SuppressLimit is the damp-score threshold at or above which an
	// observer votes to suppress a flapper.
	SuppressLimit float64 `mapstructure:"damp_scoring_suppress_limit" json:"damp_scoring_suppress_limit" yaml:"damp_scoring_suppress_limit" toml:"damp_scoring_suppress_limit" validate:"min=0"`

	// SuppressDuration is how long a damped entry persists before release.
	SuppressDuration time.Duration `mapstructure:"damp_scoring_suppress_duration" json:"damp_scoring_suppress_duration" yaml:"damp_scoring_suppress_duration" toml:"damp_scoring_suppress_duration" validate:"min=1"`

	// ExpirationInterval is the period between expiration scans.
	ExpirationInterval time.Duration `mapstructure:"damped_member_expiration_interval" json:"damped_member_expiration_interval" yaml:"damped_member_expiration_interval" toml:"damped_member_expiration_interval" validate:"min=1"`

	// TimerInterval is the period between subprotocol initiations.
	TimerInterval time.Duration `mapstructure:"damp_timer_interval" json:"damp_timer_interval" yaml:"damp_timer_interval" toml:"damp_timer_interval" validate:"min=1"`

	// MaxPercentage is the cluster-wide cap on the damped fraction, in [0,1].
	MaxPercentage float64 `mapstructure:"damped_max_percentage" json:"damped_max_percentage" yaml:"damped_max_percentage" toml:"damped_max_percentage" validate:"min=0,max=1"`
}

// DefaultConfig returns the values ringpop-node itself ships as defaults.
func DefaultConfig() Config {
	return Config{
		NVal:               3,
		RVal:               3,
		SuppressLimit:      100,
		SuppressDuration:   5 * time.Minute,
		ExpirationInterval: 1 * time.Second,
		TimerInterval:      200 * time.Millisecond,
		MaxPercentage:      0.4,
	}
}

// Validate checks every field against its constraint tag, collecting all
// violations instead of stopping at the first, matching the
// configGossip.go / configCluster.go validation pattern.
func (c Config) Validate() error {
	val := validator.New()
	val.RegisterTagNameFunc(func(f reflect.StructField) string {
		return strings.SplitN(f.Tag.Get("mapstructure"), ",", 2)[0]
	})
	err := val.Struct(c)

	if _, ok := err.(*validator.InvalidValidationError); ok {
		return ErrorValidateConfig.ErrorParent(err)
	}

	if err == nil {
		return nil
	}

	var parents []error
	var msgs []string
	for _, e := range err.(validator.ValidationErrors) {
		//nolint goerr113
		p := fmt.Errorf("config field '%s' is not validated by constraint '%s'", e.Field(), e.ActualTag())
		parents = append(parents, p)
		msgs = append(msgs, p.Error())
	}

	return errs.New(ErrorValidateConfig, ErrorValidateConfig.Message()+": "+strings.Join(msgs, "; "), parents...)
}

// LoadConfig reads a Config from v under the given key prefix (empty for
// the root), the way an operator would point viper at a config file and
// hand the damper its section.
func LoadConfig(v *viper.Viper, key string) (Config, error) {
	cfg := DefaultConfig()

	sub := v
	if key != "" {
		sub = v.Sub(key)
		if sub == nil {
			return cfg, nil
		}
	}

	if err := sub.Unmarshal(&cfg); err != nil {
		return Config{}, ErrorLoadConfig.ErrorParent(err)
	}

	return cfg, cfg.Validate()
}
