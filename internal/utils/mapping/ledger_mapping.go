package mapping

import (
	"github.com/farmfeed/ledger_service/internal/core/domain"
	"github.com/farmfeed/ledger_service/internal/models"
)

// ToModelTransaction converts a domain Transaction to a model LedgerTransaction
func ToModelTransaction(d domain.Transaction) models.LedgerTransaction {
	return models.LedgerTransaction{
		TransactionID:   d.TransactionID,
		PairKey:         d.Pair().Key(),
		FarmerID:        d.FarmerID,
		DealerID:        d.DealerID,
		DealerName:      d.DealerName,
		TransactionType: models.TransactionType(d.TransactionType),
		Amount:          d.Amount,
		Description:     d.Description,
		Category:        d.Category,
		TransactionDate: d.Date.UTC(),
		AuditFields:     ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainTransaction converts a model LedgerTransaction to a domain Transaction
func ToDomainTransaction(m models.LedgerTransaction) domain.Transaction {
	return domain.Transaction{
		TransactionID:   m.TransactionID,
		FarmerID:        m.FarmerID,
		DealerID:        m.DealerID,
		DealerName:      m.DealerName,
		TransactionType: domain.TransactionType(m.TransactionType),
		Amount:          m.Amount,
		Description:     m.Description,
		Category:        m.Category,
		Date:            m.TransactionDate.UTC(),
		AuditFields:     ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainTransactionSlice converts a slice of model transactions to domain transactions
func ToDomainTransactionSlice(ms []models.LedgerTransaction) []domain.Transaction {
	ds := make([]domain.Transaction, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainTransaction(m)
	}
	return ds
}

// ToModelBalance converts a domain Balance to a model PairBalance
func ToModelBalance(d domain.Balance) models.PairBalance {
	return models.PairBalance{
		PairKey:       d.Pair().Key(),
		FarmerID:      d.FarmerID,
		DealerID:      d.DealerID,
		CreditBalance: d.CreditBalance,
		DebitBalance:  d.DebitBalance,
		NetBalance:    d.NetBalance,
		LastUpdated:   d.LastUpdated.UTC(),
	}
}

// ToDomainBalance converts a model PairBalance to a domain Balance
func ToDomainBalance(m models.PairBalance) domain.Balance {
	return domain.Balance{
		FarmerID:      m.FarmerID,
		DealerID:      m.DealerID,
		CreditBalance: m.CreditBalance,
		DebitBalance:  m.DebitBalance,
		NetBalance:    m.NetBalance,
		LastUpdated:   m.LastUpdated.UTC(),
	}
}

// ToDomainBalanceSlice converts a slice of model balances to domain balances
func ToDomainBalanceSlice(ms []models.PairBalance) []domain.Balance {
	ds := make([]domain.Balance, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainBalance(m)
	}
	return ds
}
