package mailer

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/gomail.v2"

	"butik-backend/internal/config"
	"butik-backend/internal/database"
	"butik-backend/internal/models"
)

type Mailer struct {
	from   string
	dialer *gomail.Dialer
}

func New(cfg *config.Config) *Mailer {
	m := &Mailer{from: cfg.MailFrom}
	if cfg.SMTPHost != "" {
		m.dialer = gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass)
	}
	return m
}

// SendOrderConfirmation: sipariş onay e-postası. SMTP yapılandırılmamışsa
// loglayıp sessizce geçer; çağıran taraf için her durumda best-effort.
func (m *Mailer) SendOrderConfirmation(toEmail string, order *models.Order) error {
	if m.dialer == nil {
		logrus.WithField("order_id", order.ID).Info("SMTP yapılandırılmadı, sipariş onay e-postası atlandı")
		return nil
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", toEmail)
	msg.SetHeader("Subject", fmt.Sprintf("Sipariş Onayı #%d", order.ID))
	msg.SetBody("text/html", buildOrderHTML(order))

	return m.dialer.DialAndSend(msg)
}

func buildOrderHTML(order *models.Order) string {
	var lines []models.OrderLine
	if len(order.Lines) > 0 {
		lines = order.Lines
	} else {
		// Satırlar preload edilmemişse tazele
		database.DB.Where("order_id = ?", order.ID).Find(&lines)
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("<h2>Siparişiniz alındı</h2><p>Sipariş No: <b>#%d</b><br>Takip Kodu: %s</p>", order.ID, order.Reference))
	b.WriteString(`<table border="1" cellpadding="6" cellspacing="0" style="border-collapse:collapse;">`)
	b.WriteString("<tr><th>Ürün</th><th>Adet</th><th>Birim Fiyat</th><th>Ara Toplam</th></tr>")

	for _, line := range lines {
		name := fmt.Sprintf("Ürün #%d", line.ProductID)
		var p models.Product
		if err := database.DB.First(&p, line.ProductID).Error; err == nil {
			name = p.Name
		}
		if line.Variant != "" {
			name = fmt.Sprintf("%s (%s)", name, line.Variant)
		}
		b.WriteString(fmt.Sprintf("<tr><td>%s</td><td>%d</td><td>$%s</td><td>$%s</td></tr>",
			name, line.Quantity, line.UnitPrice.StringFixed(2), line.Subtotal().StringFixed(2)))
	}

	b.WriteString("</table>")
	b.WriteString(fmt.Sprintf("<p>Kargo: $%s<br><b>Toplam: $%s</b></p>",
		order.ShippingCost.StringFixed(2), order.Total.StringFixed(2)))
	b.WriteString(fmt.Sprintf("<p>Teslimat Adresi: %s, %s, %s</p>", order.Province, order.Canton, order.Address))

	return b.String()
}
