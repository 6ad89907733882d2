// Package app provides the ProxyScope API server application.
package app

import (
	"errors"

	"github.com/spf13/pflag"

	httpopts "github.com/kart-io/proxyscope/pkg/options/http"
	logopts "github.com/kart-io/proxyscope/pkg/options/logger"
	postgresopts "github.com/kart-io/proxyscope/pkg/options/postgres"
)

// Options contains all API server options.
type Options struct {
	// HTTP contains HTTP server configuration.
	HTTP *httpopts.Options `json:"http" mapstructure:"http"`

	// Log contains logger configuration.
	Log *logopts.Options `json:"log" mapstructure:"log"`

	// Postgres contains PostgreSQL configuration.
	Postgres *postgresopts.Options `json:"postgres" mapstructure:"postgres"`
}

// NewOptions creates new Options with defaults.
func NewOptions() *Options {
	httpOpts := httpopts.NewOptions()
	httpOpts.Addr = ":8080"

	return &Options{
		HTTP:     httpOpts,
		Log:      logopts.NewOptions(),
		Postgres: postgresopts.NewOptions(),
	}
}

// AddFlags adds flags to the flagset.
func (o *Options) AddFlags(fs *pflag.FlagSet) {
	o.HTTP.AddFlags(fs)
	o.Log.AddFlags(fs)
	o.Postgres.AddFlags(fs)
}

// Validate validates the options.
func (o *Options) Validate() error {
	if err := o.Log.Validate(); err != nil {
		return err
	}
	if err := o.HTTP.Validate(); err != nil {
		return err
	}
	if errs := o.Postgres.Validate(); len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// Complete completes the options.
func (o *Options) Complete() error {
	if err := o.HTTP.Complete(); err != nil {
		return err
	}
	return o.Postgres.Complete()
}
