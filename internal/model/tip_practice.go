package model

// TipPractice categorizes how an establishment handles gratuities.
type TipPractice string

const (
	// TipPracticeNoTipping means the business does not accept tips at all.
	TipPracticeNoTipping TipPractice = "no_tipping"
	// TipPracticeTipRequested means the business requests tips from customers.
	TipPracticeTipRequested TipPractice = "tip_requested"
	// TipPracticeServiceCharge means a mandatory service charge is added to the bill.
	TipPracticeServiceCharge TipPractice = "service_charge"
)

// TipPractices returns the full set of recognized categories.
func TipPractices() []TipPractice {
	return []TipPractice{
		TipPracticeNoTipping,
		TipPracticeTipRequested,
		TipPracticeServiceCharge,
	}
}

// Valid reports whether p is one of the recognized categories.
func (p TipPractice) Valid() bool {
	switch p {
	case TipPracticeNoTipping, TipPracticeTipRequested, TipPracticeServiceCharge:
		return true
	}
	return false
}

// TipRelevant reports whether reports in this category carry a meaningful
// tips-go-to-staff observation. No-tipping businesses have no tips to distribute.
func (p TipPractice) TipRelevant() bool {
	return p == TipPracticeTipRequested || p == TipPracticeServiceCharge
}
