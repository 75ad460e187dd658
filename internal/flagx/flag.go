// Package flagx lets several packages read their own flags from os.Args
// without tripping over each other's definitions.
package flagx

import (
	"flag"
	"os"
	"strings"
)

// FilterArgs keeps only the flags listed in allowedFlags together with their
// values. Both "-k value" and "-k=value" forms are recognised; a following
// argument is taken as the value only if it does not itself start with "-".
// The result is never nil.
func FilterArgs(args []string, allowedFlags []string) []string {
	allowed := make(map[string]struct{}, len(allowedFlags))
	for _, f := range allowedFlags {
		allowed[f] = struct{}{}
	}

	filtered := make([]string, 0, len(args))

	for i := 0; i < len(args); i++ {
		arg := args[i]

		if strings.HasPrefix(arg, "-") && strings.Contains(arg, "=") {
			name, _, _ := strings.Cut(arg, "=")
			if _, ok := allowed[name]; ok {
				filtered = append(filtered, arg)
			}
			continue
		}

		if _, ok := allowed[arg]; !ok {
			continue
		}
		filtered = append(filtered, arg)
		if i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
			filtered = append(filtered, args[i+1])
			i++
		}
	}

	return filtered
}

// StringFlag returns the value of the first of names found in os.Args, or def.
// names are given without the leading dash, e.g. StringFlag("", "c", "config").
func StringFlag(def string, names ...string) string {
	return stringFlagFrom(os.Args[1:], def, names...)
}

func stringFlagFrom(args []string, def string, names ...string) string {
	dashed := make([]string, 0, len(names))
	for _, n := range names {
		dashed = append(dashed, "-"+n)
	}

	value := def
	fs := flag.NewFlagSet("flagx", flag.ContinueOnError)
	fs.SetOutput(discard{})
	for _, n := range names {
		fs.StringVar(&value, n, def, "")
	}
	_ = fs.Parse(FilterArgs(args, dashed))

	return value
}

// JsonConfigFlags returns the JSON config path passed via -c or -config.
func JsonConfigFlags() string {
	return StringFlag("", "c", "config")
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }
