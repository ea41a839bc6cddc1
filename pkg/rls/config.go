package rls

// Config holds the environment driven settings of the RLS layer.
type Config struct {
	Setting    string `env:"RLS_SETTING" envDefault:"app.current_user_id"`
	LocalRole  string `env:"RLS_LOCAL_ROLE"`
	PolicyFile string `env:"RLS_POLICY_FILE" envDefault:"db/rls/policies.sql"`
	TablesFile string `env:"RLS_TABLES_FILE" envDefault:"db/rls/tables.yaml"`
	Schema     string `env:"RLS_SCHEMA"` // Schema overrides the manifest schema when set.
}

// Validate reports a malformed setting name or role, which ManagerOptions
// would otherwise turn into a panic.
func (c Config) Validate() error {
	if c.Setting != "" {
		if err := validateSetting(c.Setting); err != nil {
			return err
		}
	}
	if c.LocalRole != "" {
		if err := validateRole(c.LocalRole); err != nil {
			return err
		}
	}
	return nil
}

// ManagerOptions translates the config into Manager options. Call Validate
// first.
func (c Config) ManagerOptions() []Option {
	opts := []Option{}
	if c.Setting != "" {
		opts = append(opts, WithSetting(c.Setting))
	}
	if c.LocalRole != "" {
		opts = append(opts, WithLocalRole(c.LocalRole))
	}
	return opts
}
