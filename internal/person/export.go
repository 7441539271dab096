package person

import (
	"bytes"
	"fmt"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
)

const (
	// ExportSheetName はエクスポートするワークシート名。
	ExportSheetName = "Persons Sheet"
	// ExportContentType はエクスポートファイルのMIMEタイプ。
	ExportContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	exportDateLayout = "2006-01-02"
	headerFillColor  = "#808080"
)

// ExportHeaders はエクスポートのヘッダー行（列順固定）。
var ExportHeaders = []string{
	"Person Name",
	"Email",
	"Date of Birth",
	"Age",
	"Gender",
	"Country",
	"Address",
	"Receive News Letters",
}

// writeSpreadsheet はViewの一覧を1シートのxlsxに書き出し、先頭位置のReaderとして返す。
// 全件をメモリ上に構築する。
func writeSpreadsheet(views []View) (*bytes.Reader, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), ExportSheetName); err != nil {
		return nil, fmt.Errorf("failed to rename sheet: %w", err)
	}

	lastCol, err := excelize.ColumnNumberToName(len(ExportHeaders))
	if err != nil {
		return nil, err
	}

	if err := applyStyles(f, lastCol); err != nil {
		return nil, err
	}

	header := make([]any, len(ExportHeaders))
	for i, h := range ExportHeaders {
		header[i] = h
	}
	if err := f.SetSheetRow(ExportSheetName, "A1", &header); err != nil {
		return nil, fmt.Errorf("failed to write header row: %w", err)
	}

	for i, v := range views {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		row := exportRow(v)
		if err := f.SetSheetRow(ExportSheetName, cell, &row); err != nil {
			return nil, fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	if err := fitHeaderColumns(f); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to serialize spreadsheet: %w", err)
	}

	return bytes.NewReader(buf.Bytes()), nil
}

// exportRow はViewを1行分のセル値に変換する。
// 生年月日・年齢が未設定の場合は空セルにする。
func exportRow(v View) []any {
	var dob, age any
	if v.DateOfBirth != nil {
		dob = v.DateOfBirth.Format(exportDateLayout)
	}
	if v.Age != nil {
		age = *v.Age
	}

	return []any{
		v.PersonName,
		v.Email,
		dob,
		age,
		v.Gender,
		v.Country,
		v.Address,
		v.ReceiveNewsLetters,
	}
}

// applyStyles は全列を中央揃えにし、ヘッダー行に背景色を設定する。
func applyStyles(f *excelize.File, lastCol string) error {
	center := &excelize.Alignment{Horizontal: "center"}

	bodyStyle, err := f.NewStyle(&excelize.Style{Alignment: center})
	if err != nil {
		return fmt.Errorf("failed to create body style: %w", err)
	}
	if err := f.SetColStyle(ExportSheetName, "A:"+lastCol, bodyStyle); err != nil {
		return fmt.Errorf("failed to apply body style: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{headerFillColor}},
		Alignment: center,
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}
	if err := f.SetCellStyle(ExportSheetName, "A1", lastCol+"1", headerStyle); err != nil {
		return fmt.Errorf("failed to apply header style: %w", err)
	}

	return nil
}

// fitHeaderColumns はヘッダー文字列の長さに合わせて列幅を設定する。
func fitHeaderColumns(f *excelize.File) error {
	for i, h := range ExportHeaders {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		width := float64(utf8.RuneCountInString(h)) + 2
		if err := f.SetColWidth(ExportSheetName, col, col, width); err != nil {
			return fmt.Errorf("failed to set column width: %w", err)
		}
	}
	return nil
}
