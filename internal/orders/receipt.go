package orders

import (
	"bytes"
	"os"
	"path/filepath"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/jung-kurt/gofpdf"
	"github.com/sirupsen/logrus"

	"butik-backend/internal/database"
	"butik-backend/internal/models"
)

// findLogo: verilen klasörde bilinen adaylardan ilk mevcut logoyu arar.
// Bulunamazsa boş döner; fiş logosuz üretilir.
func findLogo(dir string) string {
	candidates := []string{"logo.png", "logo.jpg", "logo.jpeg"}
	for _, name := range candidates {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// buildReceiptPDF: sipariş fişini A4 PDF olarak üretir.
func buildReceiptPDF(order *models.Order, logoDir string) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	if logo := findLogo(logoDir); logo != "" {
		pdf.ImageOptions(logo, 10, 8, 30, 0, false, gofpdf.ImageOptions{ImageType: "", ReadDpi: true}, 0, "")
	}

	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFont("Helvetica", "B", 16)
	pdf.SetXY(50, 12)
	pdf.CellFormat(0, 8, tr("Sipariş Fişi"), "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetXY(50, 20)
	pdf.CellFormat(0, 6, tr("Referans: "+order.Reference), "", 1, "L", false, 0, "")
	pdf.SetX(50)
	pdf.CellFormat(0, 6, tr("Tarih: "+order.CreatedAt.Format("2006-01-02 15:04")), "", 1, "L", false, 0, "")
	pdf.SetX(50)
	pdf.CellFormat(0, 6, tr("Durum: "+string(order.Status)), "", 1, "L", false, 0, "")

	pdf.Ln(8)
	if order.Address != models.POSAddress {
		pdf.SetFont("Helvetica", "B", 11)
		pdf.CellFormat(0, 6, tr("Teslimat"), "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		pdf.CellFormat(0, 5, tr(order.RecipientName+" / "+order.Phone), "", 1, "L", false, 0, "")
		pdf.CellFormat(0, 5, tr(order.Province+" / "+order.Canton), "", 1, "L", false, 0, "")
		pdf.MultiCell(0, 5, tr(order.Address), "", "L", false)
		pdf.Ln(4)
	}

	// Satır tablosu
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(230, 230, 230)
	pdf.CellFormat(90, 7, tr("Ürün"), "1", 0, "L", true, 0, "")
	pdf.CellFormat(25, 7, tr("Adet"), "1", 0, "C", true, 0, "")
	pdf.CellFormat(35, 7, tr("Birim Fiyat"), "1", 0, "R", true, 0, "")
	pdf.CellFormat(35, 7, tr("Ara Toplam"), "1", 1, "R", true, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	for _, line := range order.Lines {
		name := ""
		if line.Product != nil {
			name = line.Product.Name
		}
		if line.Variant != "" {
			name += " (" + line.Variant + ")"
		}
		pdf.CellFormat(90, 7, tr(name), "1", 0, "L", false, 0, "")
		pdf.CellFormat(25, 7, tr(strconv.Itoa(line.Quantity)), "1", 0, "C", false, 0, "")
		pdf.CellFormat(35, 7, tr("$"+line.UnitPrice.StringFixed(2)), "1", 0, "R", false, 0, "")
		pdf.CellFormat(35, 7, tr("$"+line.Subtotal().StringFixed(2)), "1", 1, "R", false, 0, "")
	}

	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(150, 7, tr("Kargo"), "1", 0, "R", false, 0, "")
	pdf.CellFormat(35, 7, tr("$"+order.ShippingCost.StringFixed(2)), "1", 1, "R", false, 0, "")
	pdf.CellFormat(150, 7, tr("Toplam"), "1", 0, "R", false, 0, "")
	pdf.CellFormat(35, 7, tr("$"+order.Total.StringFixed(2)), "1", 1, "R", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// GET /api/orders/:id/receipt
// Kendi siparişinin PDF fişi. PDF üretimi
// başarısız olursa iç detay sızdırılmadan genel bir hata döner.
func ReceiptHandler(logoDir string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		order, err := ownOrder(c)
		if err != nil {
			return err
		}

		if err := database.DB.
			Preload("Lines").
			Preload("Lines.Product").
			First(order, order.ID).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Sipariş bulunamadı")
		}

		data, err := buildReceiptPDF(order, logoDir)
		if err != nil {
			logrus.WithError(err).WithField("order_id", order.ID).Warn("Fiş PDF'i üretilemedi")
			return fiber.NewError(fiber.StatusBadRequest, "Fiş oluşturulamadı")
		}

		c.Set(fiber.HeaderContentType, "application/pdf")
		c.Set(fiber.HeaderContentDisposition, `attachment; filename="fis-`+order.Reference+`.pdf"`)
		return c.Send(data)
	}
}
