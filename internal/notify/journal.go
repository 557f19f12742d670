package notify

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

const (
	journalFile  = "leads.xlsx"
	journalSheet = "Leads"
)

var ErrJournalEmpty = errors.New("lead journal is empty")

var journalHeaders = []any{
	"Дата", "Тип", "ID", "Имя", "Username", "Телефон", "Email", "Сумма", "Детали",
}

// Journal appends every notification as a row of an Excel workbook.
type Journal struct {
	mu     sync.Mutex
	path   string
	logger *zap.Logger
}

func NewJournal(dir string, logger *zap.Logger) (*Journal, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("notify.NewJournal: failed to create reports directory: %w", err)
	}
	return &Journal{path: filepath.Join(dir, journalFile), logger: logger}, nil
}

func (j *Journal) Notify(_ context.Context, n Notification) error {
	const operation = "notify.Journal.Notify"

	j.mu.Lock()
	defer j.mu.Unlock()

	f, err := j.open()
	if err != nil {
		return fmt.Errorf("%s: %w", operation, err)
	}
	defer f.Close()

	rows, err := f.GetRows(journalSheet)
	if err != nil {
		return fmt.Errorf("%s: read rows: %w", operation, err)
	}

	var total any
	if n.Total != nil {
		total = *n.Total
	}
	row := []any{
		n.CreatedAt.Format(dateLayout),
		string(n.Kind),
		n.UserID,
		n.DisplayName,
		n.Username,
		n.Phone,
		n.Email,
		total,
		summaryPlain(n.Summary),
	}
	cell, err := excelize.CoordinatesToCellName(1, len(rows)+1)
	if err != nil {
		return fmt.Errorf("%s: %w", operation, err)
	}
	if err := f.SetSheetRow(journalSheet, cell, &row); err != nil {
		return fmt.Errorf("%s: write row: %w", operation, err)
	}

	if err := f.SaveAs(j.path); err != nil {
		return fmt.Errorf("%s: failed to save Excel file: %w", operation, err)
	}

	j.logger.Debug("Lead journal updated",
		zap.String("kind", string(n.Kind)),
		zap.Int("row", len(rows)+1))
	return nil
}

// open loads the workbook or creates it with a header row.
func (j *Journal) open() (*excelize.File, error) {
	if _, err := os.Stat(j.path); err == nil {
		f, err := excelize.OpenFile(j.path)
		if err != nil {
			return nil, fmt.Errorf("failed to open existing file: %w", err)
		}
		return f, nil
	}

	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", journalSheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	if err := f.SetSheetRow(journalSheet, "A1", &journalHeaders); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to write headers: %w", err)
	}

	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err == nil {
		_ = f.SetRowStyle(journalSheet, 1, 1, style)
	}
	return f, nil
}

// Read returns the workbook contents, or ErrJournalEmpty when nothing was
// recorded yet. Writers are held off while the file is read.
func (j *Journal) Read() ([]byte, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	data, err := os.ReadFile(j.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrJournalEmpty
		}
		return nil, fmt.Errorf("notify.Journal.Read: %w", err)
	}
	return data, nil
}

// FileName is the name the workbook is sent under.
func (j *Journal) FileName() string {
	return filepath.Base(j.path)
}
