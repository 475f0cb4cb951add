// Package report renders sales statistics as Excel workbooks.
package report

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"flowershop/internal/models"
)

const sheetName = "Продажи"

var headers = []string{"ID", "Клиент", "Телефон", "Букет", "Цена", "Адрес", "Доставка", "Статус", "Создан"}

// WriteSalesReport writes an xlsx workbook with one row per order to w.
func WriteSalesReport(w io.Writer, orders []models.OrderInfo) error {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return err
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return err
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
	})
	if err != nil {
		return err
	}

	for i, h := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheetName, cell, h); err != nil {
			return err
		}
		if err := f.SetCellStyle(sheetName, cell, cell, headerStyle); err != nil {
			return err
		}
	}

	for i, o := range orders {
		row := i + 2
		values := []interface{}{
			o.ID,
			o.Customer,
			o.Phone,
			o.Bouquet,
			o.Price,
			o.Address,
			o.DeliveryTime.Format("2006-01-02 15:04"),
			o.Status,
			o.CreatedAt.Format("2006-01-02 15:04"),
		}
		for col, v := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheetName, cell, v); err != nil {
				return err
			}
		}
	}

	if err := f.SetColWidth(sheetName, "B", "D", 24); err != nil {
		return err
	}
	if err := f.SetColWidth(sheetName, "F", "I", 20); err != nil {
		return err
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
