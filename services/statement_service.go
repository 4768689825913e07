package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"log"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	config "github.com/jkemboi52/streamshare/configs"
	"github.com/jkemboi52/streamshare/database"
	"github.com/jkemboi52/streamshare/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var statementTemplate = template.Must(template.New("statement").Parse(`<!DOCTYPE html>
<html>
<head><style>
body { font-family: Helvetica, Arial, sans-serif; margin: 48px; color: #1c1c1e; }
h1 { font-size: 22px; } table { width: 100%; border-collapse: collapse; margin-top: 24px; }
td, th { padding: 8px 4px; border-bottom: 1px solid #ddd; text-align: left; }
.total { font-size: 18px; font-weight: bold; }
</style></head>
<body>
<h1>StreamShare Creator Earnings Statement</h1>
<p>Creator: {{.CreatorName}} (@{{.Username}})</p>
<p>Period: {{.PeriodStart}} — {{.PeriodEnd}}</p>
<table>
<tr><th>Item</th><th>Amount</th></tr>
<tr><td>Subscription revenue ({{.PaymentCount}} payments)</td><td>${{printf "%.2f" .Gross}}</td></tr>
<tr class="total"><td>Total</td><td>${{printf "%.2f" .Gross}}</td></tr>
</table>
<p>Generated {{.GeneratedAt}}.</p>
</body>
</html>`))

// GenerateEarningsStatement sums a creator's succeeded subscription payments
// for the given month, renders a PDF statement and uploads it, recording an
// EarningsStatement row pointing at the file.
func GenerateEarningsStatement(creatorID uuid.UUID, year int, month time.Month) (*models.EarningsStatement, error) {
	var creator models.User
	if err := database.DB.First(&creator, "id = ?", creatorID).Error; err != nil {
		return nil, err
	}

	periodStart := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	periodEnd := periodStart.AddDate(0, 1, 0)

	var existing models.EarningsStatement
	err := database.DB.
		Where("creator_id = ? AND period_start = ?", creatorID, periodStart).
		First(&existing).Error
	if err == nil {
		return &existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	periodPayments := func() *gorm.DB {
		return database.DB.Model(&models.Payment{}).
			Joins("JOIN subscriptions ON subscriptions.id = payments.subscription_id").
			Where("subscriptions.creator_id = ? AND payments.status = ?", creatorID, "succeeded").
			Where("payments.created_at >= ? AND payments.created_at < ?", periodStart, periodEnd)
	}

	var gross float64
	var paymentCount int64
	if err := periodPayments().Count(&paymentCount).Error; err != nil {
		return nil, err
	}
	if err := periodPayments().Select("COALESCE(SUM(payments.amount), 0)").Scan(&gross).Error; err != nil {
		return nil, err
	}

	htmlData, err := renderStatementHTML(&creator, periodStart, periodEnd, gross, paymentCount)
	if err != nil {
		return nil, fmt.Errorf("render statement: %w", err)
	}

	pdfBytes, err := generatePDFFromHTML(htmlData)
	if err != nil {
		return nil, fmt.Errorf("generate PDF: %w", err)
	}

	pdfURL, err := uploadStatementPDF(pdfBytes, creatorID.String())
	if err != nil {
		return nil, fmt.Errorf("upload statement: %w", err)
	}

	statement := models.EarningsStatement{
		CreatorID:   creatorID,
		PeriodStart: periodStart,
		PeriodEnd:   periodEnd,
		GrossAmount: gross,
		PdfURL:      pdfURL,
	}
	if err := database.DB.Create(&statement).Error; err != nil {
		return nil, err
	}

	log.Printf("✅ Generated earnings statement %s for creator %s", statement.ID, creatorID)
	return &statement, nil
}

func renderStatementHTML(creator *models.User, periodStart, periodEnd time.Time, gross float64, paymentCount int64) (string, error) {
	data := struct {
		CreatorName  string
		Username     string
		PeriodStart  string
		PeriodEnd    string
		Gross        float64
		PaymentCount int64
		GeneratedAt  string
	}{
		CreatorName:  creator.DisplayName,
		Username:     creator.Username,
		PeriodStart:  periodStart.Format("January 2, 2006"),
		PeriodEnd:    periodEnd.Add(-24 * time.Hour).Format("January 2, 2006"),
		Gross:        gross,
		PaymentCount: paymentCount,
		GeneratedAt:  time.Now().Format("January 2, 2006"),
	}

	var renderedHTML bytes.Buffer
	if err := statementTemplate.Execute(&renderedHTML, data); err != nil {
		return "", err
	}
	return renderedHTML.String(), nil
}

func generatePDFFromHTML(htmlContent string) ([]byte, error) {
	ctx, cancel := chromedp.NewContext(context.Background())
	defer cancel()

	var pdfBuffer []byte
	err := chromedp.Run(ctx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			frameTree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(frameTree.Frame.ID, htmlContent).Do(ctx)
		}),
		chromedp.ActionFunc(func(ctx context.Context) error {
			pdf, _, err := page.PrintToPDF().WithPrintBackground(true).Do(ctx)
			if err != nil {
				return err
			}
			pdfBuffer = pdf
			return nil
		}),
	)
	if err != nil {
		return nil, err
	}
	return pdfBuffer, nil
}

func uploadStatementPDF(fileBytes []byte, creatorID string) (string, error) {
	cld, err := cloudinary.NewFromURL(config.Config("CLOUDINARY_URL"))
	if err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	uploadParams := uploader.UploadParams{
		PublicID:     fmt.Sprintf("statements/%s_%s", creatorID, uuid.New().String()),
		Folder:       "streamshare_statements",
		ResourceType: "raw",
	}

	uploadResult, err := cld.Upload.Upload(ctx, bytes.NewReader(fileBytes), uploadParams)
	if err != nil {
		return "", err
	}

	return uploadResult.SecureURL, nil
}
