package command

import (
	"os"

	"github.com/ruslano69/bakread-studio/pkg/config"
)

// Environment variables the engine reads SQL credentials from. Keeping
// credentials out of the argument vector keeps them out of process listings
// and the command preview.
const (
	EnvSQLUser     = "BAKREAD_SQL_USER"
	EnvSQLPassword = "BAKREAD_SQL_PASSWORD"
)

// Env returns the process environment for an engine launch: the parent
// environment plus the credential overlay when SQL authentication is in
// use. Returns nil (inherit as-is) when no overlay is needed.
func Env(conn *config.ConnectionTarget) []string {
	if conn == nil || conn.WindowsAuth || conn.User == "" {
		return nil
	}
	env := append([]string(nil), os.Environ()...)
	env = append(env, EnvSQLUser+"="+conn.User)
	if conn.Password != "" {
		env = append(env, EnvSQLPassword+"="+conn.Password)
	}
	return env
}
