package console

import (
	"fmt"
	"slices"
	"strings"

	"github.com/armon/go-radix"
)

type command struct {
	name        string
	usage       string
	description string
	explanation string
	handler     func(a *App, args []string) error
}

var commandList = []command{
	{"help", "help [command]", "prints the help screen", "The 'help' command prints the help screen, or the explanation of one command.", handleHelp},
	{"exit", "exit", "exits the application", "The 'exit' command exits the application.", handleExit},
	{"stat", "stat", "prints total count of records", "The 'stat' command prints how many records are stored and how many of them are removed.", handleStat},
	{"create", "create", "create new record, date format: MM/dd/yyyy", "The 'create' command asks for every field and creates a new record.", handleCreate},
	{"edit", "edit <id>", "edit existing record via id, date format: MM/dd/yyyy", "The 'edit' command asks for every field and replaces the data of the record with the given id.", handleEdit},
	{"list", "list", "prints all records", "The 'list' command prints all records.", handleList},
	{"find", "find <field> \"<value>\"", "find records by field value, date format: yyyy-MMM-dd or MM/dd/yyyy", "The 'find' command prints the records whose field equals the value, e.g. find lastname \"Smith\".", handleFind},
	{"remove", "remove <id>", "remove record with given id", "The 'remove' command marks the record with the given id as removed.", handleRemove},
	{"purge", "purge", "remove records marked as deleted", "The 'purge' command reclaims the space of removed records.", handlePurge},
	{"export", "export csv|xml <path>", "saves records to the specified file", "The 'export' command writes all records to a csv or xml file.", handleExport},
	{"import", "import csv|xml <path>", "imports records from file", "The 'import' command reads records from a csv or xml file, records with existing ids are skipped.", handleImport},
}

func newCommandTree() *radix.Tree {
	tree := radix.New()
	for i := range commandList {
		tree.Insert(commandList[i].name, &commandList[i])
	}
	return tree
}

// lookup finds a command by name or by a unique prefix of its name
func (a *App) lookup(name string) (*command, error) {
	name = strings.ToLower(name)
	if v, ok := a.commands.Get(name); ok {
		return v.(*command), nil
	}
	var matches []*command
	a.commands.WalkPrefix(name, func(_ string, v any) bool {
		matches = append(matches, v.(*command))
		return false
	})
	if len(matches) == 1 {
		return matches[0], nil
	}
	if len(matches) > 1 {
		return nil, fmt.Errorf("Ambiguous command '%s', could be: %s.", name, commandNames(matches))
	}
	return nil, fmt.Errorf("There is no '%s' command.%s", name, a.suggest(name))
}

// suggest lists the commands sharing the longest possible prefix with name
func (a *App) suggest(name string) string {
	for n := len(name) - 1; n > 0; n-- {
		var matches []*command
		a.commands.WalkPrefix(name[:n], func(_ string, v any) bool {
			matches = append(matches, v.(*command))
			return false
		})
		if len(matches) > 0 {
			return fmt.Sprintf(" Did you mean: %s?", commandNames(matches))
		}
	}
	return " Type 'help' to see the available commands."
}

func commandNames(cmds []*command) string {
	names := make([]string, len(cmds))
	for i, c := range cmds {
		names[i] = c.name
	}
	slices.Sort(names)
	return strings.Join(names, ", ")
}
