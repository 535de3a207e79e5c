package marketdata

import (
	"context"
	"fmt"
	"strings"

	"github.com/jqian-ml/agent-finie/internal/validate"
	"github.com/tidwall/gjson"
)

// Filings fetches recent SEC filings for ticker from EDGAR. formType filters
// to one form (e.g. 10-K); empty means any. At most limit filings are
// rendered.
func (c *Client) Filings(ctx context.Context, ticker, formType string, limit int) (string, error) {
	cik, name, err := c.lookupCIK(ctx, ticker)
	if err != nil {
		return "", err
	}

	u := fmt.Sprintf("%s/submissions/CIK%010d.json", c.edgarData, cik)
	b, err := c.getJSON(ctx, u)
	if err != nil {
		return "", err
	}

	recent := gjson.GetBytes(b, "filings.recent")
	forms := recent.Get("form").Array()
	dates := recent.Get("filingDate").Array()
	accessions := recent.Get("accessionNumber").Array()
	docs := recent.Get("primaryDocument").Array()

	var sb strings.Builder
	if formType != "" {
		fmt.Fprintf(&sb, "Recent %s filings for %s (%s, CIK %d)\n\n", formType, ticker, name, cik)
	} else {
		fmt.Fprintf(&sb, "Recent SEC filings for %s (%s, CIK %d)\n\n", ticker, name, cik)
	}

	count := 0
	for i := range forms {
		if count >= limit || i >= len(dates) {
			break
		}
		form := forms[i].String()
		if formType != "" && form != formType {
			continue
		}
		count++
		fmt.Fprintf(&sb, "%d. %s filed %s\n", count, form, dates[i].String())
		if i < len(accessions) && i < len(docs) {
			accession := strings.ReplaceAll(accessions[i].String(), "-", "")
			fmt.Fprintf(&sb, "   %s/Archives/edgar/data/%d/%s/%s\n",
				c.edgarBase, cik, accession, docs[i].String())
		}
	}
	if count == 0 {
		if formType != "" {
			return fmt.Sprintf("No recent %s filings found for %s.", formType, ticker), nil
		}
		return fmt.Sprintf("No recent SEC filings found for %s.", ticker), nil
	}
	return sb.String(), nil
}

// lookupCIK resolves a ticker to its SEC CIK number and registrant name via
// the EDGAR company ticker map.
func (c *Client) lookupCIK(ctx context.Context, ticker string) (int64, string, error) {
	b, err := c.getJSON(ctx, c.edgarBase+"/files/company_tickers.json")
	if err != nil {
		return 0, "", err
	}

	var cik int64
	var name string
	found := false
	gjson.ParseBytes(b).ForEach(func(_, entry gjson.Result) bool {
		if strings.EqualFold(entry.Get("ticker").String(), ticker) {
			cik = entry.Get("cik_str").Int()
			name = entry.Get("title").String()
			found = true
			return false
		}
		return true
	})
	if !found {
		return 0, "", validate.ToolError{Code: "ERR_NOT_FOUND", Message: ticker + " is not a SEC registrant ticker"}
	}
	return cik, name, nil
}
