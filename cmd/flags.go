/* cmd/flags.go */

package cmd

import (
	"github.com/spf13/pflag"

	"github.com/CodeMonkeyCybersecurity/xencheck/pkg/config"
)

const (
	flagHostname = "hostname"
	flagLogin    = "login-name"
	flagPassword = "password"
)

func registerFlags(fs *pflag.FlagSet) {
	fs.StringP(flagHostname, "H", "", "XenServer pool master to query (required)")
	fs.StringP(flagLogin, "l", config.DefaultUsername, "login name for the XenAPI session")
	fs.StringP(flagPassword, "p", "", "password for the login name (required)")
	fs.SortFlags = false
}

// resolveOptions reads the parsed flags and reports the first missing one.
func resolveOptions(fs *pflag.FlagSet) (config.Options, error) {
	var opts config.Options
	var err error

	if opts.Hostname, err = fs.GetString(flagHostname); err != nil {
		return opts, err
	}
	if opts.Username, err = fs.GetString(flagLogin); err != nil {
		return opts, err
	}
	if opts.Password, err = fs.GetString(flagPassword); err != nil {
		return opts, err
	}
	return opts, opts.Validate()
}
