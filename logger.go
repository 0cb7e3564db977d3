package filecabinet

import (
	"fmt"
	"io"
	"log/slog"
)

// Logger wraps a Service and writes a line before and after every call, with the arguments and the
// results
type Logger struct {
	service Service
	logger  *slog.Logger
}

// NewLogger wraps service, lines are written to w as slog text records
func NewLogger(service Service, w io.Writer) *Logger {
	return &Logger{
		service: service,
		logger:  slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug})),
	}
}

func (l *Logger) calling(op string, args ...any) {
	if len(args) == 0 {
		l.logger.Info(fmt.Sprintf("Calling %s()", op))
		return
	}
	l.logger.Info(fmt.Sprintf("Calling %s() with %s", op, fmt.Sprint(args...)))
}

func (l *Logger) returned(op string, result any, err error) {
	if err != nil {
		l.logger.Warn(fmt.Sprintf("%s() failed", op), "error", err)
		return
	}
	l.logger.Info(fmt.Sprintf("%s() returned %v", op, result))
}

func (l *Logger) Create(data PersonalData) (int32, error) {
	l.calling("Create", data)
	id, err := l.service.Create(data)
	l.returned("Create", id, err)
	return id, err
}

func (l *Logger) Edit(id int32, data PersonalData) error {
	l.calling("Edit", fmt.Sprintf("Id = %d, ", id), data)
	err := l.service.Edit(id, data)
	l.returned("Edit", "nothing", err)
	return err
}

func (l *Logger) Remove(id int32) (bool, error) {
	l.calling("Remove", fmt.Sprintf("Id = %d", id))
	ok, err := l.service.Remove(id)
	l.returned("Remove", ok, err)
	return ok, err
}

func (l *Logger) Purge() (int, error) {
	l.calling("Purge")
	n, err := l.service.Purge()
	l.returned("Purge", n, err)
	return n, err
}

func (l *Logger) FindByField(field, value string) ([]Record, error) {
	l.calling("FindByField", fmt.Sprintf("%s = %q", field, value))
	records, err := l.service.FindByField(field, value)
	l.returned("FindByField", fmt.Sprintf("%d records", len(records)), err)
	return records, err
}

func (l *Logger) Records() ([]Record, error) {
	l.calling("Records")
	records, err := l.service.Records()
	l.returned("Records", fmt.Sprintf("%d records", len(records)), err)
	return records, err
}

func (l *Logger) Stat() (Stat, error) {
	l.calling("Stat")
	stat, err := l.service.Stat()
	l.returned("Stat", fmt.Sprintf("%d total, %d deleted", stat.Total, stat.Deleted), err)
	return stat, err
}

func (l *Logger) MakeSnapshot() (*Snapshot, error) {
	l.calling("MakeSnapshot")
	s, err := l.service.MakeSnapshot()
	l.returned("MakeSnapshot", fmt.Sprintf("%d records", s.Len()), err)
	return s, err
}

func (l *Logger) Restore(s *Snapshot) (RestoreResult, error) {
	l.calling("Restore", fmt.Sprintf("%d records", s.Len()))
	result, err := l.service.Restore(s)
	l.returned("Restore", fmt.Sprintf("%d imported, %d skipped, %d invalid", result.Imported, result.Skipped, result.Invalid), err)
	return result, err
}

func (l *Logger) Close() error {
	l.calling("Close")
	err := l.service.Close()
	l.returned("Close", "nothing", err)
	return err
}
