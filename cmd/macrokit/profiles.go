package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dshills/macrokit/internal/settings"
)

const profilesUsage = `Usage: macrokit profiles <subcommand> [arguments]

Subcommands:
  list                              list profiles, * marks the last used
  show <name>                       print a profile's options
  create [-overwrite] <name> [opt=bool...]
                                    create a profile
  set <name> <opt> <bool>           change one option
  delete <name>                     delete a profile
  import <path>                     copy a profile file into the settings directory
  export <name> <dest>              write a profile to dest
  use <name>                        load name on the next start

Options: ` + "continuous_playback, minimize_to_tray, minimalistic_mode, saveOnChange"

func runProfiles(e *env, args []string) error {
	if len(args) == 0 {
		fmt.Fprintln(e.stderr, profilesUsage)
		return fmt.Errorf("%w: missing profiles subcommand", errUsage)
	}
	m := settings.NewManager(settings.NewStore(e.cfg.Paths.SettingsDir), settings.WithLogger(e.logger))
	store := m.Store()
	sub, rest := args[0], args[1:]

	need := func(n int) error {
		if len(rest) != n {
			fmt.Fprintln(e.stderr, profilesUsage)
			return fmt.Errorf("%w: profiles %s takes %d argument(s)", errUsage, sub, n)
		}
		return nil
	}

	switch sub {
	case "list":
		names, err := store.List()
		if err != nil {
			return err
		}
		last, _ := store.LastUsed()
		for _, n := range names {
			mark := " "
			if n == last {
				mark = "*"
			}
			fmt.Fprintf(e.stdout, "%s %s\n", mark, n)
		}
		return nil

	case "show":
		if err := need(1); err != nil {
			return err
		}
		opts, err := store.Load(rest[0])
		if err != nil {
			return err
		}
		printOptions(e, opts)
		return nil

	case "create":
		overwrite := false
		if len(rest) > 0 && rest[0] == "-overwrite" {
			overwrite, rest = true, rest[1:]
		}
		if len(rest) == 0 {
			fmt.Fprintln(e.stderr, profilesUsage)
			return fmt.Errorf("%w: profiles create needs a name", errUsage)
		}
		var opts settings.Options
		for _, kv := range rest[1:] {
			name, value, ok := strings.Cut(kv, "=")
			if !ok {
				return fmt.Errorf("%w: expected option=bool, got %q", errUsage, kv)
			}
			if err := setOption(&opts, name, value); err != nil {
				return err
			}
		}
		if err := store.Create(rest[0], opts, overwrite); err != nil {
			return err
		}
		fmt.Fprintf(e.stdout, "Created %s\n", settings.ProfileName(rest[0]))
		return nil

	case "set":
		if err := need(3); err != nil {
			return err
		}
		opts, err := store.Load(rest[0])
		if err != nil {
			return err
		}
		if err := setOption(&opts, rest[1], rest[2]); err != nil {
			return err
		}
		return store.Save(rest[0], opts)

	case "delete":
		if err := need(1); err != nil {
			return err
		}
		if err := store.Delete(rest[0]); err != nil {
			return err
		}
		fmt.Fprintf(e.stdout, "Deleted %s\n", settings.ProfileName(rest[0]))
		return nil

	case "import":
		if err := need(1); err != nil {
			return err
		}
		name, err := store.Import(rest[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(e.stdout, "Imported as %s\n", name)
		return nil

	case "export":
		if err := need(2); err != nil {
			return err
		}
		return store.Export(rest[0], rest[1])

	case "use":
		if err := need(1); err != nil {
			return err
		}
		if err := m.Switch(rest[0]); err != nil {
			return err
		}
		fmt.Fprintf(e.stdout, "Using %s\n", m.Current())
		return nil
	}

	fmt.Fprintln(e.stderr, profilesUsage)
	return fmt.Errorf("%w: unknown profiles subcommand %q", errUsage, sub)
}

func setOption(opts *settings.Options, name, value string) error {
	b, err := strconv.ParseBool(value)
	if err != nil {
		return fmt.Errorf("%w: %s: %q is not a boolean", errUsage, name, value)
	}
	return opts.Set(name, b)
}

func printOptions(e *env, opts settings.Options) {
	for _, name := range settings.OptionNames {
		v, _ := opts.Get(name)
		fmt.Fprintf(e.stdout, "%-20s %v\n", name, v)
	}
}
