package domain

const (
	DonationTypePayPal = "paypal"
	DonationTypeStripe = "stripe"
)

const (
	DonationStatusCompleted = "completed"
)

// Provider terminal success states.
const (
	PayPalOrderCompleted  = "COMPLETED"
	StripeIntentSucceeded = "succeeded"
)

const (
	RoleAdmin = "admin"
)

const AnonymousUID = "anonymous"
const AnonymousDonor = "Anonymous"

// MinDonationAmount is the smallest accepted donation, in major currency units.
const MinDonationAmount = 1.0

// AmountTolerance is the largest accepted gap between claimed and provider-reported amounts.
const AmountTolerance = 0.01

const RecentDonationsLimit = 10
