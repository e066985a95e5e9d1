package model

// Account represents one independently-credentialed provider account.
// The credentials are used for the OAuth account-credentials grant.
type Account struct {
	Key          string `json:"key"`
	ExternalID   string `json:"-"`
	ClientID     string `json:"-"`
	ClientSecret string `json:"-"`
}

// Configured reports whether the account has a complete credential triple.
// Accounts without credentials are skipped by the scheduler and aggregator.
func (a Account) Configured() bool {
	return a.ExternalID != "" && a.ClientID != "" && a.ClientSecret != ""
}

// Registry is the ordered table of configured accounts. The order of the
// accounts defines the priority order used when booking meetings.
type Registry struct {
	accounts []Account
	byKey    map[string]Account
}

// NewRegistry creates a registry from the configured accounts, preserving
// their order.
func NewRegistry(accounts []Account) *Registry {
	byKey := make(map[string]Account, len(accounts))
	for _, a := range accounts {
		byKey[a.Key] = a
	}
	return &Registry{
		accounts: accounts,
		byKey:    byKey,
	}
}

// Accounts returns all accounts in priority order.
func (r *Registry) Accounts() []Account {
	return r.accounts
}

// Keys returns the account keys in priority order.
func (r *Registry) Keys() []string {
	keys := make([]string, len(r.accounts))
	for i, a := range r.accounts {
		keys[i] = a.Key
	}
	return keys
}

// Get returns the account for the given key.
func (r *Registry) Get(key string) (Account, bool) {
	a, ok := r.byKey[key]
	return a, ok
}

// Default returns the first account in the registry. Single-meeting
// operations (get/update/delete by id) are routed through this account.
func (r *Registry) Default() Account {
	if len(r.accounts) == 0 {
		return Account{}
	}
	return r.accounts[0]
}

// Len returns the number of configured accounts.
func (r *Registry) Len() int {
	return len(r.accounts)
}
