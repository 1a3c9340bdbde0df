package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Role represents user role in the system
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// Gender values accepted on loan applications
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderOther  Gender = "other"
)

// MaritalStatus values accepted on loan applications
type MaritalStatus string

const (
	MaritalSingle   MaritalStatus = "single"
	MaritalMarried  MaritalStatus = "married"
	MaritalDivorced MaritalStatus = "divorced"
	MaritalWidowed  MaritalStatus = "widowed"
)

// EducationLevel values accepted on loan applications
type EducationLevel string

const (
	EducationPrimary   EducationLevel = "primary"
	EducationSecondary EducationLevel = "secondary"
	EducationDiploma   EducationLevel = "diploma"
	EducationDegree    EducationLevel = "degree"
	EducationMasters   EducationLevel = "masters"
	EducationPhd       EducationLevel = "phd"
	EducationOther     EducationLevel = "other"
)

// EmploymentStatus values accepted on loan applications
type EmploymentStatus string

const (
	EmploymentEmployed     EmploymentStatus = "employed"
	EmploymentSelfEmployed EmploymentStatus = "self_employed"
	EmploymentUnemployed   EmploymentStatus = "unemployed"
	EmploymentStudent      EmploymentStatus = "student"
	EmploymentRetired      EmploymentStatus = "retired"
)

// IncomeBand values accepted on loan applications
type IncomeBand string

const (
	IncomeBelow10k  IncomeBand = "below_10000"
	Income10kTo30k  IncomeBand = "10000_30000"
	Income30kTo50k  IncomeBand = "30000_50000"
	Income50kTo100k IncomeBand = "50000_100000"
	IncomeAbove100k IncomeBand = "above_100000"
)

// LoanPurpose values accepted on loan applications
type LoanPurpose string

const (
	PurposeBusiness   LoanPurpose = "business"
	PurposeSchoolFees LoanPurpose = "school_fees"
	PurposeMedical    LoanPurpose = "medical"
	PurposeEmergency  LoanPurpose = "emergency"
	PurposePersonal   LoanPurpose = "personal"
)

// PaymentMethod is the channel a ledger payment was made through
type PaymentMethod string

const (
	MethodMpesa        PaymentMethod = "mpesa"
	MethodBankTransfer PaymentMethod = "bank_transfer"
)

// PaymentStatus is the settlement state of a ledger payment
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
)

// FeeType distinguishes the two fees in the payment ledger
type FeeType string

const (
	FeeServiceFee    FeeType = "service_fee"
	FeeProcessingFee FeeType = "processing_fee"
)

// Fee schedule. The service fee is a percentage of the requested amount,
// the processing fee is a flat charge collected after approval.
var (
	ServiceFeeRate = decimal.NewFromFloat(0.05)
	ProcessingFee  = decimal.NewFromInt(500)
)

// Application validation bounds
var (
	MinRequestedAmount  = decimal.NewFromInt(1000)
	DefaultInterestRate = decimal.RequireFromString("8.00")
)

const (
	MinRepaymentPeriod = 1
	MaxRepaymentPeriod = 60
)

// TokenPair represents access and refresh tokens
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// County is a Kenyan county used for applicant addresses
type County struct {
	ID   uint
	Code string
	Name string
}

// DashboardStats is the per-user overview returned on the dashboard
type DashboardStats struct {
	TotalApplications   int64           `json:"total_applications"`
	ActiveApplications  int64           `json:"active_applications"`
	DisbursedAmount     decimal.Decimal `json:"disbursed_amount"`
	PendingPayments     int64           `json:"pending_payments"`
	LatestApplicationAt *time.Time      `json:"latest_application_at"`
}

// AdminDashboardStats is the portfolio overview for back office users
type AdminDashboardStats struct {
	TotalApplications int64            `json:"total_applications"`
	ByStatus          map[string]int64 `json:"by_status"`
	TotalRequested    decimal.Decimal  `json:"total_requested"`
	TotalDisbursed    decimal.Decimal  `json:"total_disbursed"`
	FeesCollected     decimal.Decimal  `json:"fees_collected"`
	ReviewQueueSize   int64            `json:"review_queue_size"`
}
