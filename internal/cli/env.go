package cli

import (
	"fmt"
	"log/slog"
	"os"
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/macropower/standing/api"
)

// envAnnotation marks a flag whose usage already names its variable.
const envAnnotation = "standing_env"

var (
	envPrefix = strings.ToUpper(api.AppName) + "_"

	// Flags that trigger a one-off action are only taken from the command line.
	envExcluded = []string{"help", "write-config", "force", "show-config"}
)

// bindEnvVars lets $STANDING_<FLAG> supply any flag of cmd that is not given
// on the command line, e.g. STANDING_UPTO=Exam_2 or STANDING_LOG_LEVEL=debug.
// Each bound flag's usage is suffixed with its variable. Empty variables are
// treated as unset.
func bindEnvVars(cmd *cobra.Command) {
	for _, fs := range []*pflag.FlagSet{cmd.Flags(), cmd.PersistentFlags()} {
		fs.VisitAll(func(flag *pflag.Flag) {
			if slices.Contains(envExcluded, flag.Name) {
				return
			}

			bindFlagToEnv(fs, flag)
		})
	}
}

func bindFlagToEnv(fs *pflag.FlagSet, flag *pflag.Flag) {
	envName := flagToEnvName(flag.Name)

	if _, ok := flag.Annotations[envAnnotation]; !ok {
		flag.Usage = fmt.Sprintf("%s ($%s)", flag.Usage, envName)

		err := fs.SetAnnotation(flag.Name, envAnnotation, []string{envName})
		if err != nil {
			panic(err)
		}
	}

	if flag.Changed {
		return
	}

	envValue := os.Getenv(envName)
	if envValue == "" {
		return
	}

	err := flag.Value.Set(envValue)
	if err != nil {
		// The flag keeps its default.
		slog.Warn("ignoring invalid environment variable",
			slog.String("env", envName),
			slog.String("value", envValue),
			slog.Any("error", err),
		)
	}
}

// flagToEnvName maps "log-level" to "STANDING_LOG_LEVEL".
func flagToEnvName(flagName string) string {
	return envPrefix + strings.ToUpper(strings.ReplaceAll(flagName, "-", "_"))
}
