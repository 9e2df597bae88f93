package services

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/ugandalearn/learn-service/internal/models"
)

const subjectSheet = "Subjects"

var subjectHeaders = []interface{}{"Name", "Code", "Description", "Grade Levels", "Topics"}

func (s *subjectService) ExportSubjects(ctx context.Context, gradeLevel string, w io.Writer) error {
	subjects, err := s.ListSubjects(ctx, gradeLevel)
	if err != nil {
		return err
	}

	f, err := buildSubjectWorkbook(subjects)
	if err != nil {
		return fmt.Errorf("failed to build subject workbook: %w", err)
	}
	defer f.Close()

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write subject workbook: %w", err)
	}

	s.logger.InfoContext(ctx, "Subjects exported", "grade_level", gradeLevel, "rows", len(subjects))
	return nil
}

func buildSubjectWorkbook(subjects []*models.SubjectSummary) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := fillSubjectSheet(f, subjects); err != nil {
		_ = f.Close()
		return nil, err
	}
	return f, nil
}

func fillSubjectSheet(f *excelize.File, subjects []*models.SubjectSummary) error {
	if err := f.SetSheetName("Sheet1", subjectSheet); err != nil {
		return err
	}
	if err := f.SetSheetRow(subjectSheet, "A1", &subjectHeaders); err != nil {
		return err
	}

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(subjectSheet, "A1", "E1", headerStyle); err != nil {
		return err
	}
	if err := f.SetColWidth(subjectSheet, "A", "D", 24); err != nil {
		return err
	}

	for i, subject := range subjects {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}

		description := ""
		if subject.Description != nil {
			description = *subject.Description
		}
		row := []interface{}{
			subject.Name,
			subject.Code,
			description,
			strings.Join(subject.GradeLevels, ", "),
			subject.TopicCount,
		}
		if err := f.SetSheetRow(subjectSheet, cell, &row); err != nil {
			return err
		}
	}
	return nil
}
