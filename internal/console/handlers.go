package console

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/ananthvk/filecabinet"
	"github.com/ananthvk/filecabinet/internal/transfer"
	"github.com/spf13/afero"
)

var errUsage = errors.New("invalid parameters")

func (a *App) usageError(name string) error {
	v, ok := a.commands.Get(name)
	if !ok {
		return errUsage
	}
	return fmt.Errorf("%w, usage: %s", errUsage, v.(*command).usage)
}

func parseID(s string) (int32, error) {
	id, err := strconv.ParseInt(s, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("cannot parse id '%s'", s)
	}
	return int32(id), nil
}

func handleHelp(a *App, args []string) error {
	if len(args) > 0 {
		cmd, err := a.lookup(args[0])
		if err != nil {
			fmt.Fprintf(a.out, "There is no explanation for '%s' command.\n", args[0])
			return nil
		}
		fmt.Fprintln(a.out, cmd.explanation)
		fmt.Fprintf(a.out, "Usage: %s\n", cmd.usage)
		return nil
	}
	fmt.Fprintln(a.out, "Available commands:")
	a.commands.Walk(func(_ string, v any) bool {
		cmd := v.(*command)
		fmt.Fprintf(a.out, "\t%s\t- %s\n", cmd.name, cmd.description)
		return false
	})
	fmt.Fprintln(a.out)
	return nil
}

func handleExit(a *App, args []string) error {
	fmt.Fprintln(a.out, "Exiting an application...")
	a.running = false
	return nil
}

func handleStat(a *App, args []string) error {
	stat, err := a.service.Stat()
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%d record(s) total.\n", stat.Total)
	fmt.Fprintf(a.out, "%d record(s) deleted.\n", stat.Deleted)
	return nil
}

func handleCreate(a *App, args []string) error {
	data, err := a.readPersonalData()
	if err != nil {
		return err
	}
	id, err := a.service.Create(data)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Record #%d is created.\n", id)
	return nil
}

func handleEdit(a *App, args []string) error {
	if len(args) != 1 {
		return a.usageError("edit")
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	// Check first, so that the user is not asked for data that cannot be stored
	if found, err := a.exists(id); err != nil || !found {
		if err == nil {
			err = &filecabinet.NotFoundError{ID: id}
		}
		return err
	}
	data, err := a.readPersonalData()
	if err != nil {
		return err
	}
	if err := a.service.Edit(id, data); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Record #%d is updated.\n", id)
	return nil
}

func (a *App) exists(id int32) (bool, error) {
	records, err := a.service.Records()
	if err != nil {
		return false, err
	}
	for _, r := range records {
		if r.ID == id {
			return true, nil
		}
	}
	return false, nil
}

func handleList(a *App, args []string) error {
	records, err := a.service.Records()
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Fprintln(a.out, "No records found.")
		return nil
	}
	a.printer.Print(a.out, records)
	return nil
}

func handleFind(a *App, args []string) error {
	if len(args) != 2 {
		return a.usageError("find")
	}
	records, err := a.service.FindByField(args[0], args[1])
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Fprintln(a.out, "No records found.")
		return nil
	}
	a.printer.Print(a.out, records)
	return nil
}

func handleRemove(a *App, args []string) error {
	if len(args) != 1 {
		return a.usageError("remove")
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	removed, err := a.service.Remove(id)
	if err != nil {
		return err
	}
	if removed {
		fmt.Fprintf(a.out, "Record #%d is removed.\n", id)
	} else {
		fmt.Fprintf(a.out, "Record #%d does not exists.\n", id)
	}
	return nil
}

func handlePurge(a *App, args []string) error {
	stat, err := a.service.Stat()
	if err != nil {
		return err
	}
	purged, err := a.service.Purge()
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%d of %d records were purged.\n", purged, stat.Total)
	return nil
}

func handleExport(a *App, args []string) error {
	if len(args) != 2 {
		return a.usageError("export")
	}
	format, err := transfer.ForFormat(args[0])
	if err != nil {
		return err
	}
	path := args[1]

	exists, err := afero.Exists(a.fs, path)
	if err != nil {
		return err
	}
	if exists {
		ok, err := a.confirm(fmt.Sprintf("File is exist - rewrite %s? [Y/n] ", path))
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
	}

	snapshot, err := a.service.MakeSnapshot()
	if err != nil {
		return err
	}
	if err := transfer.ExportFile(a.fs, path, format, snapshot.Records()); err != nil {
		return fmt.Errorf("export failed. Can't open file %s: %w", path, err)
	}
	fmt.Fprintf(a.out, "All records are exported to file %s.\n", path)
	return nil
}

func handleImport(a *App, args []string) error {
	if len(args) != 2 {
		return a.usageError("import")
	}
	format, err := transfer.ForFormat(args[0])
	if err != nil {
		return err
	}
	path := args[1]
	exists, err := afero.Exists(a.fs, path)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("import error: file %s does not exist", path)
	}

	records, malformed, err := transfer.ImportFile(a.fs, path, format)
	if err != nil {
		return err
	}
	result, err := a.service.Restore(filecabinet.NewSnapshot(records))
	if err != nil {
		return err
	}
	for _, e := range result.Errors {
		fmt.Fprintf(a.out, "Skipped invalid record: %s\n", e)
	}
	fmt.Fprintf(a.out, "%d records were imported from %s.\n", result.Imported, path)
	if result.Skipped > 0 {
		fmt.Fprintf(a.out, "%d records were skipped, their ids already exist.\n", result.Skipped)
	}
	if malformed > 0 {
		fmt.Fprintf(a.out, "%d entries of the file could not be read.\n", malformed)
	}
	return nil
}

// confirm asks a yes/no question, an empty answer means yes
func (a *App) confirm(question string) (bool, error) {
	for {
		fmt.Fprint(a.out, question)
		answer, err := a.readLine()
		if err != nil {
			return false, err
		}
		switch strings.ToLower(strings.TrimSpace(answer)) {
		case "", "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		}
	}
}
