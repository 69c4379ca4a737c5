/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  JSON structures for API communication. These decouple the domain
  model from the external contract: nullable inventory figures render
  as JSON null, dates as YYYY-MM-DD strings, money as decimal strings.

NAMING CONVENTION:
  - *DTO:     Response types returned to clients
  - *Request: Request body types from clients

VALIDATION:
  Done in handlers; DTOs are pure data carriers.

SEE ALSO:
  - handlers.go: Uses these types
*/
package api

import (
	"github.com/Thejas6666/gas-agency-app/depot"
)

// =============================================================================
// STOCK DAYS AND PROGRESS
// =============================================================================

// DayDTO represents a stock day in API responses.
type DayDTO struct {
	ID                 int64  `json:"id"`
	Date               string `json:"date"`
	Status             string `json:"status"`
	DeliveryNoMovement bool   `json:"delivery_no_movement"`
}

func toDayDTO(d depot.StockDay) DayDTO {
	return DayDTO{
		ID:                 d.ID,
		Date:               d.Date.String(),
		Status:             string(d.Status),
		DeliveryNoMovement: d.DeliveryNoMovement,
	}
}

// ProgressDTO is the seven-step completion map, keys matching the
// dashboard's step names.
type ProgressDTO struct {
	OpeningStock   bool `json:"opening_stock"`
	IOCLMovements  bool `json:"iocl_movements"`
	Deliveries     bool `json:"deliveries"`
	FinalizedStock bool `json:"finalized_stock"`
	ExpectedCash   bool `json:"expected_cash"`
	CashCollection bool `json:"cash_collection"`
	ReconciledCash bool `json:"reconciled_cash"`
}

func toProgressDTO(p depot.Progress) ProgressDTO {
	return ProgressDTO{
		OpeningStock:   p.OpeningStock,
		IOCLMovements:  p.IOCLMovements,
		Deliveries:     p.Deliveries,
		FinalizedStock: p.Finalized,
		ExpectedCash:   p.ExpectedCash,
		CashCollection: p.CashCollection,
		ReconciledCash: p.CashReconciled,
	}
}

// DashboardResponse is the dashboard collaborator's view: the most
// recent day, closed-day history and the step progress.
type DashboardResponse struct {
	Day         *DayDTO     `json:"day"`
	IsDayClosed bool        `json:"is_day_closed"`
	History     []DayDTO    `json:"history"`
	Progress    ProgressDTO `json:"progress"`
}

// OpenDayRequest creates a new stock day.
type OpenDayRequest struct {
	Date string `json:"date"`
}

// NextDateResponse suggests the date for the next day to open.
type NextDateResponse struct {
	NextAvailableDate string `json:"next_available_date"`
}

// =============================================================================
// REFERENCE DATA
// =============================================================================

type CylinderTypeDTO struct {
	ID   int64  `json:"id"`
	Code string `json:"code"`
}

type CreateCylinderTypeRequest struct {
	Code string `json:"code"`
}

type DeliveryPersonDTO struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Active bool   `json:"active"`
}

type CreateDeliveryPersonRequest struct {
	Name string `json:"name"`
}

// =============================================================================
// OPENING STOCK AND IOCL MOVEMENTS
// =============================================================================

// OpeningStockRow is one cylinder type's opening figures.
type OpeningStockRow struct {
	CylinderTypeID int64 `json:"cylinder_type_id"`
	Filled         int   `json:"filled"`
	Empty          int   `json:"empty"`
	Defective      int   `json:"defective"`
}

type OpeningStockRequest struct {
	Rows []OpeningStockRow `json:"rows"`
}

// IOCLRowDTO is one cylinder type's supplier movement for the day.
type IOCLRowDTO struct {
	CylinderTypeID int64  `json:"cylinder_type_id"`
	Code           string `json:"code"`
	ItemReceipt    int    `json:"item_receipt"`
	ItemReturn     int    `json:"item_return"`
}

// IOCLMovementsResponse mirrors the iocl-movements screen: rows,
// totals, flag state and editability.
type IOCLMovementsResponse struct {
	StockDate     string       `json:"stock_date"`
	Rows          []IOCLRowDTO `json:"rows"`
	TotalReceived int          `json:"total_received"`
	TotalReturned int          `json:"total_returned"`
	NoMovement    bool         `json:"no_movement"`
	HasData       bool         `json:"has_data"`
	Step1Done     bool         `json:"step1_done"`
	IsFinalized   bool         `json:"is_finalized"`
	IsEditable    bool         `json:"is_editable"`
}

// IOCLMovementRow is one explicit receipt/return entry.
type IOCLMovementRow struct {
	CylinderTypeID int64 `json:"cylinder_type_id"`
	Receipt        int   `json:"receipt"`
	Return         int   `json:"return"`
}

type IOCLMovementsRequest struct {
	Rows []IOCLMovementRow `json:"rows"`
}

// =============================================================================
// DELIVERY TRANSACTIONS
// =============================================================================

// DeliveryIssueDTO is one driver's issued quantities for one cylinder
// type.
type DeliveryIssueDTO struct {
	DeliveryPersonID int64 `json:"delivery_person_id"`
	CylinderTypeID   int64 `json:"cylinder_type_id"`
	RegularQty       int   `json:"regular_qty"`
	NCQty            int   `json:"nc_qty"`
	DBCQty           int   `json:"dbc_qty"`
	TVOutQty         int   `json:"tv_out_qty"`
}

type DeliveryTransactionsRequest struct {
	Entries []DeliveryIssueDTO `json:"entries"`
}

type DeliveryNoMovementRequest struct {
	Enabled bool `json:"enabled"`
}

// DeliveryTransactionsResponse mirrors the delivery entry screen.
type DeliveryTransactionsResponse struct {
	StockDate   string              `json:"stock_date"`
	Persons     []DeliveryPersonDTO `json:"persons"`
	Types       []CylinderTypeDTO   `json:"types"`
	Issues      []DeliveryIssueDTO  `json:"issues"`
	NoMovement  bool                `json:"no_movement"`
	IsSaved     bool                `json:"is_saved"`
	IsFinalized bool                `json:"is_finalized"`
}

// =============================================================================
// CLOSING STOCK
// =============================================================================

// ClosingRowDTO is the reconciliation preview/result for one cylinder
// type.
type ClosingRowDTO struct {
	CylinderTypeID int64  `json:"cylinder_type_id"`
	Code           string `json:"code"`
	OpeningFilled  int    `json:"opening_filled"`
	OpeningEmpty   int    `json:"opening_empty"`
	ItemReceipt    int    `json:"item_receipt"`
	ItemReturn     int    `json:"item_return"`
	SalesRegular   int    `json:"sales_regular"`
	NCQty          int    `json:"nc_qty"`
	DBCQty         int    `json:"dbc_qty"`
	TVOutQty       int    `json:"tv_out_qty"`
	Defective      int    `json:"defective_empty_vehicle"`
	ClosingFilled  int    `json:"closing_filled"`
	ClosingEmpty   int    `json:"closing_empty"`
	TotalStock     int    `json:"total_stock"`
}

func toClosingRowDTO(c depot.ClosingRow) ClosingRowDTO {
	return ClosingRowDTO{
		CylinderTypeID: c.CylinderTypeID,
		Code:           c.Code,
		OpeningFilled:  c.OpeningFilled,
		OpeningEmpty:   c.OpeningEmpty,
		ItemReceipt:    c.ItemReceipt,
		ItemReturn:     c.ItemReturn,
		SalesRegular:   c.Regular,
		NCQty:          c.NonCash,
		DBCQty:         c.DepositBacked,
		TVOutQty:       c.TransferOut,
		Defective:      c.Defective,
		ClosingFilled:  c.ClosingFilled,
		ClosingEmpty:   c.ClosingEmpty,
		TotalStock:     c.TotalStock,
	}
}

type ClosingStockResponse struct {
	StockDate   string          `json:"stock_date"`
	Rows        []ClosingRowDTO `json:"rows"`
	Step3Done   bool            `json:"step3_done"`
	IsFinalized bool            `json:"is_finalized"`
}

// =============================================================================
// CASH SETTLEMENT (steps 5-7 gating inputs)
// =============================================================================

// CashRowRequest records one driver's cash figure. Amounts travel as
// decimal strings.
type CashRowRequest struct {
	DeliveryPersonID int64  `json:"delivery_person_id"`
	Amount           string `json:"amount"`
}

// CashBalanceRequest records one driver's settlement outcome.
type CashBalanceRequest struct {
	DeliveryPersonID int64  `json:"delivery_person_id"`
	Expected         string `json:"expected"`
	Deposited        string `json:"deposited"`
}

// =============================================================================
// REPORTS AND SCENARIOS
// =============================================================================

// ReportKeyResponse is the (day id, date) key handed to the report
// collaborator; only CLOSED days resolve.
type ReportKeyResponse struct {
	StockDayID int64  `json:"stock_day_id"`
	Date       string `json:"date"`
}

type ScenarioDTO struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type LoadScenarioRequest struct {
	Name string `json:"name"`
}

// ErrorResponse is the uniform error body.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
