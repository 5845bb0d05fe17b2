package monitoring

import (
	"fmt"
	"math/rand/v2"
	"time"

	"choreographer/internal/domain"
)

var (
	demoTypes     = []string{"third_party_sharing", "high_value_transaction", "international_transfer", "account_review"}
	demoPurposes  = []string{"investment_advice", "loan_application", "insurance_quote", "tax_planning"}
	demoProviders = []string{"FinTechCorp", "InvestmentApp", "LoanProvider", "InsuranceHub"}
)

// DemoGenerator produces synthetic triggers when the bank cannot be polled
// and for the manual trigger endpoint.
type DemoGenerator struct {
	rnd *rand.Rand
	now func() time.Time
}

// NewDemoGenerator seeds a generator. Equal seeds give equal sequences.
func NewDemoGenerator(seed uint64) *DemoGenerator {
	return &DemoGenerator{rnd: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)), now: time.Now}
}

func (g *DemoGenerator) userID() string {
	return fmt.Sprintf("user_%d", 1000+g.rnd.IntN(9000))
}

// Fallback is the trigger sent in place of a failed polling cycle. The type
// spellings are the legacy ones; normalisation maps them.
func (g *DemoGenerator) Fallback() domain.ConsentTrigger {
	return domain.ConsentTrigger{
		Type:               domain.TriggerType(demoTypes[g.rnd.IntN(len(demoTypes))]),
		Amount:             float64(100 + g.rnd.IntN(9901)),
		Purpose:            demoPurposes[g.rnd.IntN(len(demoPurposes))],
		ThirdPartyProvider: demoProviders[g.rnd.IntN(len(demoProviders))],
		UserID:             g.userID(),
		DataScope:          []string{"transactions", "balance"},
		ConsentRequired:    true,
		Timestamp:          domain.At(g.now()),
	}
}

// OpenBanking is one of three canned third-party access requests.
func (g *DemoGenerator) OpenBanking() domain.ConsentTrigger {
	now := domain.At(g.now())
	switch g.rnd.IntN(3) {
	case 0:
		return domain.ConsentTrigger{
			Type:               "third_party_balance_access",
			UserID:             g.userID(),
			Amount:             float64(100 + g.rnd.IntN(4901)),
			Timestamp:          now,
			ThirdPartyProvider: "FinTech Corp",
			Purpose:            "Loan Application",
			DataScope:          []string{"balance", "transactions"},
			ConsentRequired:    true,
		}
	case 1:
		return domain.ConsentTrigger{
			Type:               "third_party_transaction_sharing",
			UserID:             g.userID(),
			Amount:             float64(50 + g.rnd.IntN(951)),
			Timestamp:          now,
			ThirdPartyProvider: "Investment App",
			Purpose:            "Investment Analysis",
			DataScope:          []string{"transactions", "balance"},
			ConsentRequired:    true,
		}
	default:
		return domain.ConsentTrigger{
			Type:               "open_banking_consent",
			UserID:             g.userID(),
			Timestamp:          now,
			ThirdPartyProvider: "Budget Tracker",
			Purpose:            "Financial Planning",
			DataScope:          []string{"accounts", "transactions"},
			ConsentRequired:    true,
		}
	}
}
