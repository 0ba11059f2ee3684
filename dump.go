package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// dumpArgs describes a pg_dump of the anonymised database
type dumpArgs struct {
	file     string
	options  string // extra pg_dump options, eg "--format custom --compress 9"
	dbname   string
	user     string
	password string
	host     string
	port     string
}

// command builds the pg_dump command; the password is passed in the
// environment rather than on the command line
func (d dumpArgs) command(ctx context.Context) *exec.Cmd {
	args := strings.Fields(d.options)
	args = append(args,
		"--dbname", d.dbname,
		"--username", d.user,
		"--host", d.host,
		"--port", d.port,
		"--file", d.file,
	)
	cmd := exec.CommandContext(ctx, "pg_dump", args...)
	cmd.Env = append(os.Environ(), "PGPASSWORD="+d.password)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd
}

// runDump dumps the database to d.file
func runDump(ctx context.Context, d dumpArgs) error {
	if err := d.command(ctx).Run(); err != nil {
		return fmt.Errorf("pg_dump to %s: %w", d.file, err)
	}
	return nil
}
