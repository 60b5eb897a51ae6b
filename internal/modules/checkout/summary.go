package checkout

import (
	"fmt"
	"strings"
	"time"

	"github.com/hpglow/storefront-backend/internal/modules/cart"
	"github.com/hpglow/storefront-backend/internal/modules/catalog"
	"github.com/hpglow/storefront-backend/internal/modules/pricing"
)

const stampLayout = "Monday, January 2, 2006 at 03:04:05 PM"

// manila is the shop's timezone; Manila has no DST so a fixed offset is
// exact when the tz database is unavailable.
var manila = func() *time.Location {
	if loc, err := time.LoadLocation("Asia/Manila"); err == nil {
		return loc
	}
	return time.FixedZone("PHT", 8*60*60)
}()

// SummaryInput is everything printed on the order message.
type SummaryInput struct {
	OrderID  string
	PlacedAt time.Time
	Details  Details
	Items    []cart.LineItem
	Quote    pricing.Breakdown
	Method   *catalog.PaymentMethod
	ProofURL string
	Contact  ContactChannel
	Contacts Contacts
}

// BuildSummary renders the order message the customer sends to the shop.
func BuildSummary(in SummaryInput) string {
	var b strings.Builder
	d := in.Details

	b.WriteString("✨ HP GLOW - NEW ORDER\n\n")

	b.WriteString("📅 ORDER DATE & TIME\n")
	b.WriteString(in.PlacedAt.In(manila).Format(stampLayout) + "\n\n")

	b.WriteString("👤 CUSTOMER INFORMATION\n")
	fmt.Fprintf(&b, "Name: %s\nEmail: %s\nPhone: %s\n\n", d.FullName, d.Email, d.Phone)

	b.WriteString("📦 SHIPPING ADDRESS\n")
	fmt.Fprintf(&b, "%s\n%s, %s %s\n%s\n\n", d.Address, d.City, d.State, d.ZipCode, d.Country)

	b.WriteString("🛒 ORDER DETAILS\n")
	lines := make([]string, 0, len(in.Items))
	for _, it := range in.Items {
		lines = append(lines, fmt.Sprintf("• %s x%d - %s\n  Purity: %s%%",
			it.DisplayName(), it.Quantity, pricing.FormatPeso(it.LineTotal()), formatPurity(it.Product.PurityPercentage)))
	}
	b.WriteString(strings.Join(lines, "\n\n") + "\n\n")

	b.WriteString("💰 PRICING\n")
	fmt.Fprintf(&b, "Product Total: %s\n", pricing.FormatPeso(in.Quote.Subtotal))
	fmt.Fprintf(&b, "Shipping Fee: %s (%s)\n", pricing.FormatPeso(in.Quote.ShippingFee), d.Region.Label())
	fmt.Fprintf(&b, "Grand Total: %s\n\n", pricing.FormatPeso(in.Quote.Total))

	b.WriteString("💳 PAYMENT METHOD\n")
	if in.Method != nil {
		fmt.Fprintf(&b, "%s\nAccount: %s\n\n", in.Method.Name, in.Method.AccountNumber)
	} else {
		b.WriteString("N/A\n\n")
	}

	b.WriteString("📸 PROOF OF PAYMENT\n")
	if in.ProofURL != "" {
		b.WriteString("✅ Payment proof has been uploaded and is visible on this page.\n")
		b.WriteString("Please attach the payment proof image when sending this message.\n\n")
	} else {
		b.WriteString("❌ Payment proof not provided - Please upload proof before placing order\n\n")
	}

	b.WriteString("📱 CONTACT METHOD\n")
	b.WriteString(in.Contacts.Line(in.Contact) + "\n\n")

	fmt.Fprintf(&b, "📋 ORDER ID: %s\n\n", in.OrderID)
	b.WriteString("Please confirm this order. Thank you!")
	return b.String()
}

// formatPurity prints 99 as "99" and 99.5 as "99.5".
func formatPurity(p float64) string {
	return strings.TrimSuffix(strings.TrimRight(fmt.Sprintf("%.2f", p), "0"), ".")
}
