/*
catalog.go - Static category catalogs and accounting-code derivation

PURPOSE:
  The two category catalogs (receipts and expenses) are part of the external
  contract: the 4-digit account codes feed the bookkeeping export and must
  never drift. Expense and Receipt categories occupy disjoint code spaces
  and are never cross-looked-up.

STRUCTURE:
  Each catalog maps a category code to its display label, its accounting
  account code, and the group the UI uses to cluster related entries.
  Built once at package init, immutable afterwards.

SEE ALSO:
  - rules.go: Uses catalog membership for category validation
  - mirror.go: Looks up both catalogs when deriving the zero-net pair
*/
package compliance

import "sort"

// Category is a stable category code, partitioned by Kind.
type Category string

// Receipt categories.
const (
	CatDonation              Category = "donation"
	CatCandidateContribution Category = "candidate_personal_contribution"
	CatBankLoan              Category = "bank_loan"
	CatPartyLoan             Category = "party_loan"
	CatIndividualLoan        Category = "individual_loan"
	CatPartyTransfer         Category = "party_definitive_transfer"
	CatPartyDirectPayment    Category = "party_direct_expense_payment"
	CatInKindCandidate       Category = "in_kind_candidate"
	CatInKindParty           Category = "in_kind_party"
	CatInKindIndividual      Category = "in_kind_individual"
	CatMiscRevenue           Category = "miscellaneous_revenue"
	CatFinancialIncome       Category = "financial_income"
)

// Expense categories.
const (
	CatMaterials        Category = "materials"
	CatSupplies         Category = "supplies_purchases"
	CatPropertyRental   Category = "property_rental"
	CatEquipmentRental  Category = "equipment_rental"
	CatCampaignStaff    Category = "campaign_staff"
	CatTempStaff        Category = "temp_staff"
	CatSecondedStaff    Category = "seconded_staff"
	CatCommunication    Category = "communication_consulting"
	CatAccountantFees   Category = "accountant_fees"
	CatAudiovisual      Category = "audiovisual_production"
	CatPublications     Category = "publications_printing"
	CatSurveys          Category = "surveys"
	CatTransport        Category = "transport"
	CatPublicMeetings   Category = "public_meetings"
	CatHospitality      Category = "hospitality"
	CatPostalCosts      Category = "postal_costs"
	CatTelecom          Category = "telecommunications"
	CatMiscExpense      Category = "miscellaneous_expense"
	CatFinancialExpense Category = "financial_expense"
)

// CatalogEntry describes one category: user-facing label, the account code
// used by the bookkeeping export, and the UI grouping label.
type CatalogEntry struct {
	Category    Category
	Label       string
	AccountCode string
	Group       string
}

// receiptCatalog and expenseCatalog are the authoritative mappings.
// Account codes are 4-digit strings; do not renumber.
var receiptCatalog = map[Category]CatalogEntry{
	CatDonation:              {CatDonation, "Don de personne physique", "7010", "Dons"},
	CatCandidateContribution: {CatCandidateContribution, "Apport personnel du candidat", "7021", "Apports"},
	CatBankLoan:              {CatBankLoan, "Emprunt bancaire", "7022", "Emprunts"},
	CatPartyLoan:             {CatPartyLoan, "Prêt d'un parti politique", "7023", "Emprunts"},
	CatIndividualLoan:        {CatIndividualLoan, "Prêt d'une personne physique", "7025", "Emprunts"},
	CatPartyTransfer:         {CatPartyTransfer, "Versement définitif d'un parti", "7031", "Partis politiques"},
	CatPartyDirectPayment:    {CatPartyDirectPayment, "Dépense payée directement par un parti", "7032", "Partis politiques"},
	CatInKindCandidate:       {CatInKindCandidate, "Concours en nature du candidat", "7050", "Concours en nature"},
	CatInKindParty:           {CatInKindParty, "Concours en nature d'un parti", "7051", "Concours en nature"},
	CatInKindIndividual:      {CatInKindIndividual, "Concours en nature d'une personne physique", "7052", "Concours en nature"},
	CatMiscRevenue:           {CatMiscRevenue, "Recettes diverses", "7580", "Autres recettes"},
	CatFinancialIncome:       {CatFinancialIncome, "Produits financiers", "7600", "Autres recettes"},
}

var expenseCatalog = map[Category]CatalogEntry{
	CatMaterials:        {CatMaterials, "Achats de matériel", "6051", "Achats"},
	CatSupplies:         {CatSupplies, "Achats de fournitures", "6060", "Achats"},
	CatPropertyRental:   {CatPropertyRental, "Location immobilière", "6132", "Locations"},
	CatEquipmentRental:  {CatEquipmentRental, "Location de matériel", "6135", "Locations"},
	CatCampaignStaff:    {CatCampaignStaff, "Personnel de campagne", "6040", "Personnel"},
	CatTempStaff:        {CatTempStaff, "Personnel intérimaire", "6210", "Personnel"},
	CatSecondedStaff:    {CatSecondedStaff, "Personnel mis à disposition", "6211", "Personnel"},
	CatCommunication:    {CatCommunication, "Conseil en communication", "6226", "Communication"},
	CatAccountantFees:   {CatAccountantFees, "Honoraires d'expert-comptable", "6229", "Honoraires"},
	CatAudiovisual:      {CatAudiovisual, "Production audiovisuelle", "6230", "Communication"},
	CatPublications:     {CatPublications, "Publications et impressions", "6237", "Communication"},
	CatSurveys:          {CatSurveys, "Sondages", "6235", "Communication"},
	CatTransport:        {CatTransport, "Transports et déplacements", "6240", "Logistique"},
	CatPublicMeetings:   {CatPublicMeetings, "Réunions publiques", "6254", "Logistique"},
	CatHospitality:      {CatHospitality, "Frais de réception", "6257", "Logistique"},
	CatPostalCosts:      {CatPostalCosts, "Frais postaux", "6260", "Frais généraux"},
	CatTelecom:          {CatTelecom, "Télécommunications", "6262", "Frais généraux"},
	CatMiscExpense:      {CatMiscExpense, "Dépenses diverses", "6280", "Frais généraux"},
	CatFinancialExpense: {CatFinancialExpense, "Frais financiers", "6600", "Frais généraux"},
}

// Catalog returns the immutable catalog entry for (kind, category).
// ok is false when the category does not belong to that kind's space.
func Catalog(kind Kind, category Category) (CatalogEntry, bool) {
	switch kind {
	case Receipt:
		e, ok := receiptCatalog[category]
		return e, ok
	case Expense:
		e, ok := expenseCatalog[category]
		return e, ok
	}
	return CatalogEntry{}, false
}

// AccountCode derives the 4-digit accounting code for (kind, category).
// A validated draft always resolves; a miss indicates an internal
// consistency fault and is surfaced by Accept as ErrUnknownCategory.
func AccountCode(kind Kind, category Category) (string, bool) {
	e, ok := Catalog(kind, category)
	if !ok {
		return "", false
	}
	return e.AccountCode, true
}

// Categories lists the catalog entries for a kind in a stable order
// (grouped, then by account code). Used by the API to feed form selects.
func Categories(kind Kind) []CatalogEntry {
	var src map[Category]CatalogEntry
	switch kind {
	case Receipt:
		src = receiptCatalog
	case Expense:
		src = expenseCatalog
	default:
		return nil
	}

	entries := make([]CatalogEntry, 0, len(src))
	for _, e := range src {
		entries = append(entries, e)
	}
	// Account codes are 4-digit strings so lexical order is numeric order.
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].AccountCode < entries[j].AccountCode
	})
	return entries
}
