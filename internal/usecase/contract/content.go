package contract

import (
	"bytes"
	"text/template"
	"time"

	"github.com/shopspring/decimal"
)

var contentTmpl = template.Must(template.New("contract").Parse(`PLEDGE LOAN CONTRACT {{.ContractNumber}}
Loan {{.LoanNumber}}, issued {{.Date}}

Borrower: {{.BorrowerID}}
Pledged item: {{.ItemDescription}} ({{.ItemCategory}}, {{.ItemCondition}})
Estimated value: {{.EstimatedValue}}

Principal: {{.Principal}}
Monthly rate: {{.Rate}}%
Term: {{.TermMonths}} months
Total payable: {{.TotalPayable}}
Storage fee: {{.StorageFee}}
Final due date: {{.DueDate}}

The pledged item is held by the lender until the total payable is settled.
`))

type contentData struct {
	ContractNumber  string
	LoanNumber      string
	Date            string
	BorrowerID      string
	ItemDescription string
	ItemCategory    string
	ItemCondition   string
	EstimatedValue  string
	Principal       string
	Rate            string
	TermMonths      int
	TotalPayable    string
	StorageFee      string
	DueDate         string
}

func money(d decimal.Decimal) string { return d.StringFixed(2) }

func day(t time.Time) string { return t.Format("2006-01-02") }

func renderContent(d contentData) (string, error) {
	var buf bytes.Buffer
	if err := contentTmpl.Execute(&buf, d); err != nil {
		return "", err
	}
	return buf.String(), nil
}
