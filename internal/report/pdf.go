package report

import (
	"bytes"
	"fmt"
	"io"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/props"

	golddomain "github.com/insightpulse/scout/internal/gold/domain"
)

type dailySummaryData struct {
	Date         string
	TxCount      int64
	TotalRevenue float64
	AvgValue     float64
	Brands       []golddomain.BrandPerformanceRow
}

func renderDailySummary(data dailySummaryData) (io.Reader, error) {
	cfg := config.NewBuilder().
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
		}).
		Build()

	m := maroto.New(cfg)

	m.AddRow(10,
		text.NewCol(12, "Daily Sales Summary", props.Text{
			Size:  20,
			Style: fontstyle.Bold,
			Align: align.Left,
		}),
	)

	m.AddRow(16,
		col.New(6).Add(
			text.New("Date: "+data.Date, props.Text{Top: 0}),
			text.New(fmt.Sprintf("Transactions: %d", data.TxCount), props.Text{Top: 4}),
			text.New("Total revenue: "+formatPeso(data.TotalRevenue), props.Text{Top: 8}),
			text.New("Average value: "+formatPeso(data.AvgValue), props.Text{Top: 12}),
		),
		col.New(6),
	)

	m.AddRow(12,
		text.NewCol(12, "Brand Performance", props.Text{
			Size:  14,
			Style: fontstyle.Bold,
			Top:   4,
		}),
	)

	m.AddRow(8,
		text.NewCol(6, "Brand", props.Text{Style: fontstyle.Bold}),
		text.NewCol(2, "Revenue", props.Text{Style: fontstyle.Bold, Align: align.Right}),
		text.NewCol(2, "Transactions", props.Text{Style: fontstyle.Bold, Align: align.Right}),
		text.NewCol(2, "Share", props.Text{Style: fontstyle.Bold, Align: align.Right}),
	)

	for _, row := range data.Brands {
		m.AddRow(6,
			text.NewCol(6, row.BrandName, props.Text{}),
			text.NewCol(2, formatPeso(row.Revenue), props.Text{Align: align.Right}),
			text.NewCol(2, fmt.Sprintf("%d", row.TxCount), props.Text{Align: align.Right}),
			text.NewCol(2, formatShare(row.Share), props.Text{Align: align.Right}),
		)
	}

	if len(data.Brands) == 0 {
		m.AddRow(6,
			text.NewCol(12, "No transactions recorded for this day.", props.Text{}),
		)
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, err
	}
	return bytes.NewReader(doc.GetBytes()), nil
}

func formatPeso(v float64) string {
	return fmt.Sprintf("PHP %.2f", v)
}

func formatShare(v float64) string {
	return fmt.Sprintf("%.1f%%", v*100)
}
