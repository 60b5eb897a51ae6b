package checkout

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/hpglow/storefront-backend/internal/modules/cart"
	"github.com/hpglow/storefront-backend/internal/modules/catalog"
	"github.com/hpglow/storefront-backend/internal/modules/pricing"
)

func TestBuildSummary(t *testing.T) {
	variation := &catalog.Variation{ID: "v10", Name: "10mg", Price: 2500}
	tirz := peptide("p2", "Tirzepatide", 2000, 5)
	tirz.PurityPercentage = 99.5
	items := []cart.LineItem{
		{Product: peptide("p1", "BPC-157", 1250, 5), Quantity: 2, Price: 1250},
		{Product: tirz, Variation: variation, Quantity: 1, Price: 2500},
	}
	details := completeDetails(pricing.RegionVisayasMindanao)

	got := BuildSummary(SummaryInput{
		OrderID:  "ord-1",
		PlacedAt: time.Date(2026, 10, 18, 6, 30, 15, 0, time.UTC),
		Details:  details,
		Items:    items,
		Quote:    pricing.Quote(items, details.Region),
		Method:   &testMethods[0],
		ProofURL: "http://x/proof.png",
		Contact:  ContactViber,
		Contacts: DefaultContacts,
	})

	want := `✨ HP GLOW - NEW ORDER

📅 ORDER DATE & TIME
Sunday, October 18, 2026 at 02:30:15 PM

👤 CUSTOMER INFORMATION
Name: Maria Santos
Email: maria@example.com
Phone: 09171234567

📦 SHIPPING ADDRESS
12 Mabini St
Makati, Metro Manila 1200
Philippines

🛒 ORDER DETAILS
• BPC-157 x2 - ₱2,500
  Purity: 99%

• Tirzepatide (10mg) x1 - ₱2,500
  Purity: 99.5%

💰 PRICING
Product Total: ₱5,000
Shipping Fee: ₱220 (VISAYAS & MINDANAO)
Grand Total: ₱5,220

💳 PAYMENT METHOD
GCash
Account: 0917 000 0000

📸 PROOF OF PAYMENT
✅ Payment proof has been uploaded and is visible on this page.
Please attach the payment proof image when sending this message.

📱 CONTACT METHOD
Viber: 09062349763

📋 ORDER ID: ord-1

Please confirm this order. Thank you!`
	assert.Equal(t, want, got)
}

func TestBuildSummaryWithoutMethodOrProof(t *testing.T) {
	got := BuildSummary(SummaryInput{
		OrderID:  "ord-2",
		PlacedAt: time.Now(),
		Details:  completeDetails(pricing.RegionNCR),
		Contacts: DefaultContacts,
	})

	assert.Contains(t, got, "💳 PAYMENT METHOD\nN/A\n")
	assert.Contains(t, got, "❌ Payment proof not provided")
	assert.Contains(t, got, "📱 CONTACT METHOD\nNot selected\n")
}
