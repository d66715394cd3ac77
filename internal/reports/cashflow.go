package reports

// CashFlowLine is one cash account's movement over the window.
type CashFlowLine struct {
	AccountID int64  `json:"account_id"`
	Code      string `json:"code"`
	Name      string `json:"name"`
	Starting  int64  `json:"starting"`
	Inflows   int64  `json:"inflows"`
	Outflows  int64  `json:"outflows"`
	Ending    int64  `json:"ending"`
}

// CashFlow summarises cash movement across the company's cash and
// bank accounts. The overview identity Starting + Inflows - Outflows
// = Ending holds per line and in total.
type CashFlow struct {
	Window   Window         `json:"window"`
	Lines    []CashFlowLine `json:"lines"`
	Starting int64          `json:"starting"`
	Inflows  int64          `json:"inflows"`
	Outflows int64          `json:"outflows"`
	Ending   int64          `json:"ending"`
}

// BuildCashFlow renders movement for cash-designated accounts in
// debit-positive terms. Rows whose subtype is flagged inverse (credit
// lines spent as cash) carry a credit-normal starting balance, so it
// is negated to read as negative cash on hand.
func BuildCashFlow(window Window, rows []AccountRow) CashFlow {
	cf := CashFlow{Window: window}
	for _, r := range rows {
		line := CashFlowLine{
			AccountID: r.Account.ID,
			Code:      r.Account.Code,
			Name:      r.Account.Name,
			Starting:  r.Balance.Starting,
			Inflows:   r.Balance.Debit,
			Outflows:  r.Balance.Credit,
		}
		if r.Subtype.InverseCashFlow {
			line.Starting = -r.Balance.Starting
		}
		line.Ending = line.Starting + line.Inflows - line.Outflows
		if line.Starting == 0 && line.Inflows == 0 && line.Outflows == 0 {
			continue
		}
		cf.Lines = append(cf.Lines, line)
		cf.Starting += line.Starting
		cf.Inflows += line.Inflows
		cf.Outflows += line.Outflows
	}
	cf.Ending = cf.Starting + cf.Inflows - cf.Outflows
	return cf
}
