package filecabinet

import (
	"log/slog"
	"time"
)

// Meter wraps a Service and logs how long every call took
type Meter struct {
	service Service
	logger  *slog.Logger
}

// NewMeter wraps service. A nil logger means slog.Default()
func NewMeter(service Service, logger *slog.Logger) *Meter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Meter{service: service, logger: logger}
}

func (m *Meter) took(op string, start time.Time) {
	m.logger.Info(op+" took", "elapsed", time.Since(start))
}

func (m *Meter) Create(data PersonalData) (int32, error) {
	defer m.took("Create", time.Now())
	return m.service.Create(data)
}

func (m *Meter) Edit(id int32, data PersonalData) error {
	defer m.took("Edit", time.Now())
	return m.service.Edit(id, data)
}

func (m *Meter) Remove(id int32) (bool, error) {
	defer m.took("Remove", time.Now())
	return m.service.Remove(id)
}

func (m *Meter) Purge() (int, error) {
	defer m.took("Purge", time.Now())
	return m.service.Purge()
}

func (m *Meter) FindByField(field, value string) ([]Record, error) {
	defer m.took("FindByField", time.Now())
	return m.service.FindByField(field, value)
}

func (m *Meter) Records() ([]Record, error) {
	defer m.took("Records", time.Now())
	return m.service.Records()
}

func (m *Meter) Stat() (Stat, error) {
	defer m.took("Stat", time.Now())
	return m.service.Stat()
}

func (m *Meter) MakeSnapshot() (*Snapshot, error) {
	defer m.took("MakeSnapshot", time.Now())
	return m.service.MakeSnapshot()
}

func (m *Meter) Restore(s *Snapshot) (RestoreResult, error) {
	defer m.took("Restore", time.Now())
	return m.service.Restore(s)
}

func (m *Meter) Close() error {
	defer m.took("Close", time.Now())
	return m.service.Close()
}
