package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"helacredit/internal/core/domain"
)

// ============================================================
// Auth & User Tables
// ============================================================

// User represents users table
type User struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Username  string         `gorm:"uniqueIndex;size:50;not null" json:"username"`
	Email     string         `gorm:"uniqueIndex;size:100;not null" json:"email"`
	Password  string         `gorm:"size:255;not null" json:"-"`
	FirstName string         `gorm:"size:50" json:"first_name"`
	LastName  string         `gorm:"size:50" json:"last_name"`
	Role      string         `gorm:"size:20;default:'USER'" json:"role"`
	IsActive  bool           `gorm:"default:true" json:"is_active"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string {
	return "users"
}

// UserResponse DTO
type UserResponse struct {
	ID        uint      `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Role      string    `json:"role"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

func (u *User) ToResponse() *UserResponse {
	return &UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Role:      u.Role,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
	}
}

// RefreshToken represents refresh_tokens table
type RefreshToken struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	UserID    uint       `gorm:"index;not null" json:"user_id"`
	TokenHash string     `gorm:"size:255;not null;index" json:"-"`
	ExpiresAt time.Time  `gorm:"not null" json:"expires_at"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	RevokedAt *time.Time `gorm:"index" json:"revoked_at"`
	User      User       `gorm:"foreignKey:UserID" json:"-"`
}

func (RefreshToken) TableName() string {
	return "refresh_tokens"
}

func (rt *RefreshToken) IsRevoked() bool {
	return rt.RevokedAt != nil
}

func (rt *RefreshToken) IsExpired() bool {
	return time.Now().After(rt.ExpiresAt)
}

// ============================================================
// Master Tables
// ============================================================

// County master data (47 Kenyan counties)
type County struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Code      string    `gorm:"size:10;uniqueIndex;not null" json:"code"`
	Name      string    `gorm:"size:50;uniqueIndex;not null" json:"name"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (County) TableName() string {
	return "counties"
}

// ============================================================
// Loan Application Tables
// ============================================================

// LoanApplication is the main workflow table
type LoanApplication struct {
	ID            uint   `gorm:"primaryKey" json:"id"`
	ApplicationID string `gorm:"size:36;uniqueIndex;not null" json:"application_id"`
	UserID        uint   `gorm:"not null;index" json:"user_id"`

	// Applicant details
	FirstName        string     `gorm:"size:50;not null" json:"first_name"`
	LastName         string     `gorm:"size:50;not null" json:"last_name"`
	NationalID       string     `gorm:"size:8;not null;index" json:"national_id"`
	PhoneNumber      string     `gorm:"size:10;not null" json:"phone_number"`
	Email            string     `gorm:"size:100;not null" json:"email"`
	DateOfBirth      *time.Time `gorm:"type:date" json:"date_of_birth"`
	Gender           string     `gorm:"size:10" json:"gender"`
	MaritalStatus    string     `gorm:"size:15" json:"marital_status"`
	EducationLevel   string     `gorm:"size:15" json:"education_level"`
	CountyID         uint       `gorm:"not null" json:"county_id"`
	Town             string     `gorm:"size:100" json:"town"`
	PostalAddress    string     `gorm:"size:100" json:"postal_address"`
	EmploymentStatus string     `gorm:"size:20" json:"employment_status"`
	EmployerName     string     `gorm:"size:100" json:"employer_name"`
	MonthlyIncome    string     `gorm:"size:20" json:"monthly_income"`

	// Next of kin
	NextOfKinName  string `gorm:"size:100" json:"next_of_kin_name"`
	NextOfKinPhone string `gorm:"size:10" json:"next_of_kin_phone"`

	// Preferred payment channel
	PaymentMethod string `gorm:"size:15" json:"payment_method"`
	MpesaNumber   string `gorm:"size:10" json:"mpesa_number"`
	BankAccount   string `gorm:"size:30" json:"bank_account"`

	// Loan terms
	LoanPurpose     string              `gorm:"size:20;not null" json:"loan_purpose"`
	RequestedAmount decimal.Decimal     `gorm:"type:decimal(10,2);not null" json:"requested_amount"`
	ApprovedAmount  decimal.NullDecimal `gorm:"type:decimal(10,2)" json:"approved_amount"`
	InterestRate    decimal.Decimal     `gorm:"type:decimal(5,2);not null;default:8.00" json:"interest_rate"`
	RepaymentPeriod int                 `gorm:"not null" json:"repayment_period"`

	// Workflow
	Status       string `gorm:"size:15;not null;default:'draft';index" json:"status"`
	ReviewNotes  string `gorm:"type:text" json:"review_notes"`
	RejectReason string `gorm:"type:text" json:"reject_reason"`

	// Lifecycle stamps, each set once on first entry to the state
	SubmittedAt *time.Time `json:"submitted_at"`
	ReviewedAt  *time.Time `json:"reviewed_at"`
	ApprovedAt  *time.Time `json:"approved_at"`
	RejectedAt  *time.Time `json:"rejected_at"`
	DisbursedAt *time.Time `json:"disbursed_at"`
	CompletedAt *time.Time `json:"completed_at"`

	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Applicant    *User             `gorm:"foreignKey:UserID" json:"applicant,omitempty"`
	County       *County           `gorm:"foreignKey:CountyID" json:"county,omitempty"`
	Payments     []Payment         `gorm:"foreignKey:LoanApplicationID" json:"payments,omitempty"`
	Disbursement *LoanDisbursement `gorm:"foreignKey:LoanApplicationID" json:"disbursement,omitempty"`
}

func (LoanApplication) TableName() string {
	return "loan_applications"
}

// Principal returns the amount amortization is computed on. The
// approved amount wins once it is set.
func (a *LoanApplication) Principal() decimal.Decimal {
	if a.ApprovedAmount.Valid {
		return a.ApprovedAmount.Decimal
	}
	return a.RequestedAmount
}

// ServiceFeeAmount is 5% of the requested amount.
func (a *LoanApplication) ServiceFeeAmount() decimal.Decimal {
	return a.RequestedAmount.Mul(domain.ServiceFeeRate).Round(2)
}

// LoanApplicationResponse DTO
type LoanApplicationResponse struct {
	ID            uint   `json:"id"`
	ApplicationID string `json:"application_id"`
	UserID        uint   `json:"user_id"`

	FirstName        string     `json:"first_name"`
	LastName         string     `json:"last_name"`
	NationalID       string     `json:"national_id"`
	PhoneNumber      string     `json:"phone_number"`
	Email            string     `json:"email"`
	DateOfBirth      *time.Time `json:"date_of_birth"`
	Gender           string     `json:"gender"`
	MaritalStatus    string     `json:"marital_status"`
	EducationLevel   string     `json:"education_level"`
	CountyID         uint       `json:"county_id"`
	CountyName       string     `json:"county_name,omitempty"`
	Town             string     `json:"town"`
	PostalAddress    string     `json:"postal_address"`
	EmploymentStatus string     `json:"employment_status"`
	EmployerName     string     `json:"employer_name"`
	MonthlyIncome    string     `json:"monthly_income"`
	NextOfKinName    string     `json:"next_of_kin_name"`
	NextOfKinPhone   string     `json:"next_of_kin_phone"`
	PaymentMethod    string     `json:"payment_method"`
	MpesaNumber      string     `json:"mpesa_number,omitempty"`
	BankAccount      string     `json:"bank_account,omitempty"`

	LoanPurpose     string              `json:"loan_purpose"`
	RequestedAmount decimal.Decimal     `json:"requested_amount"`
	ApprovedAmount  decimal.NullDecimal `json:"approved_amount"`
	InterestRate    decimal.Decimal     `json:"interest_rate"`
	RepaymentPeriod int                 `json:"repayment_period"`

	Status       string `json:"status"`
	ReviewNotes  string `json:"review_notes,omitempty"`
	RejectReason string `json:"reject_reason,omitempty"`

	ServiceFee   decimal.Decimal           `json:"service_fee"`
	Amortization domain.AmortizationResult `json:"amortization"`

	SubmittedAt *time.Time `json:"submitted_at"`
	ReviewedAt  *time.Time `json:"reviewed_at"`
	ApprovedAt  *time.Time `json:"approved_at"`
	RejectedAt  *time.Time `json:"rejected_at"`
	DisbursedAt *time.Time `json:"disbursed_at"`
	CompletedAt *time.Time `json:"completed_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Payments     []PaymentResponse         `json:"payments,omitempty"`
	Disbursement *LoanDisbursementResponse `json:"disbursement,omitempty"`
}

func (a *LoanApplication) ToResponse() *LoanApplicationResponse {
	resp := &LoanApplicationResponse{
		ID:               a.ID,
		ApplicationID:    a.ApplicationID,
		UserID:           a.UserID,
		FirstName:        a.FirstName,
		LastName:         a.LastName,
		NationalID:       a.NationalID,
		PhoneNumber:      a.PhoneNumber,
		Email:            a.Email,
		DateOfBirth:      a.DateOfBirth,
		Gender:           a.Gender,
		MaritalStatus:    a.MaritalStatus,
		EducationLevel:   a.EducationLevel,
		CountyID:         a.CountyID,
		Town:             a.Town,
		PostalAddress:    a.PostalAddress,
		EmploymentStatus: a.EmploymentStatus,
		EmployerName:     a.EmployerName,
		MonthlyIncome:    a.MonthlyIncome,
		NextOfKinName:    a.NextOfKinName,
		NextOfKinPhone:   a.NextOfKinPhone,
		PaymentMethod:    a.PaymentMethod,
		MpesaNumber:      a.MpesaNumber,
		BankAccount:      a.BankAccount,
		LoanPurpose:      a.LoanPurpose,
		RequestedAmount:  a.RequestedAmount,
		ApprovedAmount:   a.ApprovedAmount,
		InterestRate:     a.InterestRate,
		RepaymentPeriod:  a.RepaymentPeriod,
		Status:           a.Status,
		ReviewNotes:      a.ReviewNotes,
		RejectReason:     a.RejectReason,
		ServiceFee:       a.ServiceFeeAmount(),
		Amortization:     domain.ComputeAmortization(a.Principal(), a.InterestRate, a.RepaymentPeriod),
		SubmittedAt:      a.SubmittedAt,
		ReviewedAt:       a.ReviewedAt,
		ApprovedAt:       a.ApprovedAt,
		RejectedAt:       a.RejectedAt,
		DisbursedAt:      a.DisbursedAt,
		CompletedAt:      a.CompletedAt,
		CreatedAt:        a.CreatedAt,
		UpdatedAt:        a.UpdatedAt,
	}

	if a.County != nil {
		resp.CountyName = a.County.Name
	}
	for i := range a.Payments {
		resp.Payments = append(resp.Payments, *a.Payments[i].ToResponse())
	}
	if a.Disbursement != nil {
		resp.Disbursement = a.Disbursement.ToResponse()
	}

	return resp
}

// ============================================================
// Ledger Tables
// ============================================================

// Payment is a fee ledger entry against a loan application
type Payment struct {
	ID                uint            `gorm:"primaryKey" json:"id"`
	LoanApplicationID uint            `gorm:"not null;index" json:"loan_application_id"`
	Reference         string          `gorm:"size:20;uniqueIndex;not null" json:"reference"`
	FeeType           string          `gorm:"size:20;not null" json:"fee_type"`
	Amount            decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"amount"`
	Method            string          `gorm:"size:15;not null" json:"method"`
	Status            string          `gorm:"size:10;not null;default:'pending';index" json:"status"`
	TransactionID     string          `gorm:"size:30" json:"transaction_id"`
	PaidAt            *time.Time      `json:"paid_at"`
	CreatedAt         time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time       `gorm:"autoUpdateTime" json:"updated_at"`

	LoanApplication *LoanApplication `gorm:"foreignKey:LoanApplicationID" json:"-"`
}

func (Payment) TableName() string {
	return "payments"
}

// PaymentResponse DTO
type PaymentResponse struct {
	ID            uint            `json:"id"`
	Reference     string          `json:"reference"`
	FeeType       string          `json:"fee_type"`
	Amount        decimal.Decimal `json:"amount"`
	Method        string          `json:"method"`
	Status        string          `json:"status"`
	TransactionID string          `json:"transaction_id,omitempty"`
	PaidAt        *time.Time      `json:"paid_at"`
	CreatedAt     time.Time       `json:"created_at"`
}

func (p *Payment) ToResponse() *PaymentResponse {
	return &PaymentResponse{
		ID:            p.ID,
		Reference:     p.Reference,
		FeeType:       p.FeeType,
		Amount:        p.Amount,
		Method:        p.Method,
		Status:        p.Status,
		TransactionID: p.TransactionID,
		PaidAt:        p.PaidAt,
		CreatedAt:     p.CreatedAt,
	}
}

// LoanDisbursement records the single payout for an application
type LoanDisbursement struct {
	ID                uint            `gorm:"primaryKey" json:"id"`
	LoanApplicationID uint            `gorm:"not null;uniqueIndex" json:"loan_application_id"`
	Reference         string          `gorm:"size:20;uniqueIndex;not null" json:"reference"`
	Amount            decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"amount"`
	Method            string          `gorm:"size:15;not null" json:"method"`
	PhoneNumber       string          `gorm:"size:10" json:"phone_number"`
	TransactionID     string          `gorm:"size:30" json:"transaction_id"`
	DisbursedBy       uint            `gorm:"not null" json:"disbursed_by"`
	DisbursedAt       time.Time       `gorm:"not null" json:"disbursed_at"`
	CreatedAt         time.Time       `gorm:"autoCreateTime" json:"created_at"`

	LoanApplication *LoanApplication `gorm:"foreignKey:LoanApplicationID" json:"-"`
	Officer         *User            `gorm:"foreignKey:DisbursedBy" json:"officer,omitempty"`
}

func (LoanDisbursement) TableName() string {
	return "loan_disbursements"
}

// LoanDisbursementResponse DTO
type LoanDisbursementResponse struct {
	ID            uint            `json:"id"`
	Reference     string          `json:"reference"`
	Amount        decimal.Decimal `json:"amount"`
	Method        string          `json:"method"`
	PhoneNumber   string          `json:"phone_number,omitempty"`
	TransactionID string          `json:"transaction_id,omitempty"`
	DisbursedAt   time.Time       `json:"disbursed_at"`
}

func (d *LoanDisbursement) ToResponse() *LoanDisbursementResponse {
	return &LoanDisbursementResponse{
		ID:            d.ID,
		Reference:     d.Reference,
		Amount:        d.Amount,
		Method:        d.Method,
		PhoneNumber:   d.PhoneNumber,
		TransactionID: d.TransactionID,
		DisbursedAt:   d.DisbursedAt,
	}
}

// ============================================================
// Auto Migration
// ============================================================

// AutoMigrate runs auto migration for all tables
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&RefreshToken{},
		&County{},
		&LoanApplication{},
		&Payment{},
		&LoanDisbursement{},
	)
}
