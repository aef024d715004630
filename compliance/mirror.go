/*
mirror.go - Zero-net mirrored operation pair

PURPOSE:
  When a party pays a campaign expense directly
  (category party_direct_expense_payment), the books record TWO operations
  of identical amount: a receipt crediting the party's payment and a
  mirrored expense for what was actually bought. Net effect on the
  campaign's own funds is zero, but both sides must appear so the expense
  counts against the plafond.

PLACEHOLDERS:
  No money moved through the campaign account, so the pair carries a fixed
  "wire" payment mode and a null bank statement reference on both records.

SEE ALSO:
  - engine.go: Accept calls MirrorPair for this category
  - campaign/submit.go: Persists the pair atomically (or compensates)
*/
package compliance

import "fmt"

// MirrorPair derives the receipt/expense pair for a validated party direct
// payment draft. The first record is the Receipt, the second the Expense;
// callers must persist them together or not at all.
func MirrorPair(d OperationDraft) ([]Record, error) {
	amount, ok := d.ParsedAmount()
	if !ok {
		return nil, fmt.Errorf("mirror pair from unvalidated draft: bad amount %q", d.Amount)
	}

	receiptCode, ok := AccountCode(Receipt, CatPartyDirectPayment)
	if !ok {
		return nil, fmt.Errorf("%w: %s/%s", ErrUnknownCategory, Receipt, CatPartyDirectPayment)
	}
	expenseCode, ok := AccountCode(Expense, d.AssociatedExpenseCategory)
	if !ok {
		return nil, fmt.Errorf("%w: %s/%s", ErrUnknownCategory, Expense, d.AssociatedExpenseCategory)
	}

	party := normalizeParty(d.Party)

	receipt := Record{
		Kind:             Receipt,
		Date:             d.Date,
		Amount:           amount,
		Category:         CatPartyDirectPayment,
		AccountCode:      receiptCode,
		PaymentMode:      PayWire, // placeholder, no real cash flow
		BankStatementRef: nil,
		Party:            &party,
		Attachment:       d.Attachment,
		Comment:          appendUserComment(fmt.Sprintf("Expense paid by %s", party.Name), d.Comment),
		Status:           StatusPending,
	}

	expense := Record{
		Kind:             Expense,
		Date:             d.Date,
		Amount:           amount,
		Category:         d.AssociatedExpenseCategory,
		AccountCode:      expenseCode,
		PaymentMode:      PayWire, // same placeholder as the receipt
		BankStatementRef: nil,
		Beneficiary:      party.Name,
		Party:            &party,
		Attachment:       d.Attachment,
		Comment:          appendUserComment(fmt.Sprintf("Paid by %s", party.Name), d.Comment),
		Status:           StatusPending,
	}

	return []Record{receipt, expense}, nil
}

func appendUserComment(generated, user string) string {
	if user == "" {
		return generated
	}
	return generated + " - " + user
}
