// Package flagx lets several components share os.Args: each one keeps only
// the flags it owns before handing them to its own flag.FlagSet.
package flagx

import (
	"flag"
	"io"
	"os"
	"strings"
)

// flagName strips leading dashes and an "=value" suffix: "--config=x" and
// "-config" both yield "config".
func flagName(arg string) string {
	name := strings.TrimLeft(arg, "-")
	if i := strings.IndexByte(name, '='); i >= 0 {
		name = name[:i]
	}
	return name
}

// FilterArgs returns the arguments from args that belong to one of the
// allowed flags, together with their values. Allowed names are given without
// dashes; both single- and double-dash spellings are accepted, as the flag
// package does.
//
//	FilterArgs([]string{"-a", ":8080", "-x", "--config=c.json"}, "a", "config")
//	// => ["-a", ":8080", "--config=c.json"]
//
// A value is taken from the next argument only when it does not itself
// start with a dash.
func FilterArgs(args []string, allowed ...string) []string {
	set := make(map[string]struct{}, len(allowed))
	for _, f := range allowed {
		set[f] = struct{}{}
	}

	filtered := make([]string, 0, len(args))

	for i := 0; i < len(args); i++ {
		arg := args[i]
		if !strings.HasPrefix(arg, "-") {
			continue
		}
		if _, ok := set[flagName(arg)]; !ok {
			continue
		}

		filtered = append(filtered, arg)
		if strings.Contains(arg, "=") {
			continue
		}
		if i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
			filtered = append(filtered, args[i+1])
			i++
		}
	}

	return filtered
}

// ConfigPath returns the JSON config file named by -c / -config in args,
// falling back to the CONFIG environment variable. Empty means no file.
func ConfigPath(args []string) string {
	var path string

	fs := flag.NewFlagSet("config", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&path, "config", "", "path to config file")
	fs.StringVar(&path, "c", "", "path to config file (short)")
	_ = fs.Parse(FilterArgs(args, "c", "config"))

	if path == "" {
		path = os.Getenv("CONFIG")
	}
	return path
}
