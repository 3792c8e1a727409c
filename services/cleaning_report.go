package services

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/yeremiapane/hospital-app/models"
)

var reportColumns = []struct {
	title string
	width float64
}{
	{"Room", 22},
	{"Assigned To", 40},
	{"Type", 32},
	{"Priority", 22},
	{"Status", 26},
	{"Assigned", 18},
	{"Done", 18},
}

// WriteDailyReport renders the day's cleaning tasks as a one-table PDF.
func WriteDailyReport(w io.Writer, day time.Time, tasks []models.CleaningTask) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	// core fonts are cp1252; names and notes arrive as UTF-8
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle("Cleaning report "+day.Format(DateLayout), false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, "Daily Cleaning Report", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(0, 7, day.Format("Monday, 02 January 2006"), "", 1, "L", false, 0, "")
	pdf.Ln(3)

	counts := make(map[models.TaskStatus]int, len(models.TaskStatuses))
	for _, t := range tasks {
		counts[t.Status]++
	}
	summary := fmt.Sprintf("Total tasks: %d", len(tasks))
	for _, st := range models.TaskStatuses {
		summary += fmt.Sprintf("   %s: %d", st, counts[st])
	}
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(0, 6, summary, "", 1, "L", false, 0, "")
	pdf.Ln(2)

	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(230, 230, 230)
	for _, col := range reportColumns {
		pdf.CellFormat(col.width, 7, col.title, "1", 0, "L", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 9)
	if len(tasks) == 0 {
		pdf.CellFormat(0, 7, "No cleaning tasks were assigned on this day.", "1", 1, "C", false, 0, "")
	}
	for _, t := range tasks {
		done := "-"
		if t.CompletedDate != nil {
			done = t.CompletedDate.Format("15:04")
		}
		cells := []string{
			t.RoomNumber,
			t.AssignedTo,
			string(t.CleaningType),
			string(t.Priority),
			string(t.Status),
			t.AssignedDate.Format("15:04"),
			done,
		}
		for i, col := range reportColumns {
			pdf.CellFormat(col.width, 6, tr(cells[i]), "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}

	pdf.Ln(4)
	pdf.SetFont("Helvetica", "I", 8)
	pdf.CellFormat(0, 5, "Estimated minutes booked: "+strconv.Itoa(totalMinutes(tasks)), "", 1, "L", false, 0, "")

	return pdf.Output(w)
}

func totalMinutes(tasks []models.CleaningTask) int {
	var total int
	for _, t := range tasks {
		total += t.EstimatedDuration
	}
	return total
}
