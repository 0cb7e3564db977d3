package main

import (
	"fmt"
	"math"
	"math/rand"
	"os"
	"time"

	"github.com/ananthvk/filecabinet/internal/record"
	"github.com/ananthvk/filecabinet/internal/transfer"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/spf13/afero"
	"github.com/spf13/pflag"
)

const letters = "abcdefghijklmnopqrstuvwxyz"

func randomName() string {
	b := make([]byte, rand.Intn(10)+3)
	for i := range b {
		b[i] = letters[rand.Intn(len(letters))]
	}
	b[0] -= 'a' - 'A'
	return string(b)
}

// randomRecord returns a record that passes the default rule set
func randomRecord(id int32) record.Record {
	from := record.Date(1950, time.January, 1)
	days := int(time.Since(from).Hours() / 24)
	return record.New(id, record.PersonalData{
		FirstName:   randomName(),
		LastName:    randomName(),
		DateOfBirth: from.AddDate(0, 0, rand.Intn(days)),
		SchoolGrade: int16(rand.Intn(11) + 1),
		AverageMark: decimal.New(int64(rand.Intn(101)), -1),
		ClassLetter: rune('A' + rand.Intn(5)),
	})
}

func main() {
	formatName := pflag.StringP("output-type", "t", "csv", "output format, csv or xml")
	output := pflag.StringP("output", "o", "", "output file (default is a random name)")
	amount := pflag.IntP("records-amount", "a", 10, "number of records")
	start := pflag.Int32P("start-id", "i", 1, "id of the first record")
	pflag.Parse()

	format, err := transfer.ForFormat(*formatName)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if *amount < 0 || *start < 1 || int64(*start)+int64(*amount)-1 > math.MaxInt32 {
		fmt.Fprintln(os.Stderr, "amount must not be negative, ids must be between 1 and 2147483647")
		os.Exit(1)
	}
	if *output == "" {
		*output = fmt.Sprintf("records-%s.%s", uuid.NewString(), format.Name())
	}

	records := make([]record.Record, *amount)
	for i := range records {
		records[i] = randomRecord(*start + int32(i))
	}
	if err := transfer.ExportFile(afero.NewOsFs(), *output, format, records); err != nil {
		fmt.Fprintf(os.Stderr, "(error) EXPORT: %s\n", err)
		os.Exit(1)
	}
	fmt.Printf("%d records were written to %s.\n", *amount, *output)
}
