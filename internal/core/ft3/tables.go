package ft3

// phaseTactics aligns CFPF kill chain phases with the FT3 tactics at the
// same lifecycle position.
var phaseTactics = map[string][]string{
	"P1": {"FTA001", "FTA002"},
	"P2": {"FTA003", "FTA004"},
	"P3": {"FTA005", "FTA006"},
	"P4": {"FTA007", "FTA009"},
	"P5": {"FTA010"},
}

// stageTactic collapses Group-IB stage names onto the coarser FT3 tactics.
var stageTactic = map[string]string{
	"Reconnaissance":       "FTA001",
	"Resource Development": "FTA002",
	"Initial Access":       "FTA003",
	"Trust Abuse":          "FTA003",
	"End-user Interaction": "FTA003",
	"Credential Access":    "FTA003",
	"Account Access":       "FTA003",
	"Execution":            "FTA004",
	"Defence Evasion":      "FTA005",
	"Defense Evasion":      "FTA005",
	"Perform Fraud":        "FTA007",
	"Monetization":         "FTA010",
	"Laundering":           "FTA010",
}

// fraudTypeKeywords expands a lower-cased fraud type tag into the terms
// searched for in technique names and descriptions. Terms are substrings,
// so stems like "impersonat" match every inflection.
var fraudTypeKeywords = map[string][]string{
	"account-takeover": {
		"account takeover", "credential", "password", "login",
		"session", "exposed credential", "password reset",
	},
	"vishing": {
		"phishing", "social engineering", "phone", "voice",
		"impersonat",
	},
	"wire-fraud": {
		"wire", "transfer", "payment", "transaction",
		"fraudulent transaction",
	},
	"malvertising": {
		"malvertising", "ad fraud", "advertising",
	},
	"bec": {
		"business email", "email compromise", "email account",
		"spearphishing", "impersonat",
	},
	"business-email-compromise": {
		"business email", "email compromise", "email account",
		"spearphishing", "impersonat",
	},
	"invoice-fraud": {
		"invoice", "payment", "billing", "falsifying",
	},
	"payment-diversion": {
		"payment", "diversion", "redirect", "wire", "transfer",
	},
	"synthetic-identity": {
		"synthetic", "identity", "fake", "fabricat", "falsifying",
		"identity document", "establish account",
	},
	"new-account-fraud": {
		"new account", "account open", "establish account",
		"fake merchant", "application",
	},
	"application-fraud": {
		"application", "falsify", "document", "identity",
	},
	"payroll-diversion": {
		"payroll", "diversion", "direct deposit", "payment",
		"account manipulation",
	},
	"phishing": {
		"phishing", "social engineering", "credential",
		"spearphishing",
	},
	"premium-diversion": {
		"premium", "diversion", "insurance", "payment",
		"account manipulation",
	},
	"impersonation": {
		"impersonat", "identity theft", "fake", "social media attack",
		"website cloning",
	},
	"deepfake": {
		"deepfake", "synthetic", "impersonat", "identity",
		"falsifying", "voice",
	},
	"crypto-laundering": {
		"crypto", "laundering", "cash-out", "shell",
		"scheduled transfer", "payout",
	},
	"check-fraud": {
		"check", "deposit", "document", "falsify",
		"fabricat",
	},
	"fraudulent-claim": {
		"claim", "fraudulent", "billing", "document",
		"falsify",
	},
	"disability-fraud": {
		"disability", "insurance", "claim", "fraudulent",
		"document",
	},
	"provider-fraud": {
		"provider", "billing", "claim", "fraudulent",
		"upcoding",
	},
	"romance-scam": {
		"romance", "social engineering", "social media",
		"trust", "impersonat",
	},
	"money-mule": {
		"mule", "money", "laundering", "cash-out",
		"scheduled transfer",
	},
	"credential-stuffing": {
		"credential", "stuffing", "credential dump",
		"account takeover", "enumeration",
	},
	"insider-threat": {
		"insider", "internal", "access", "data exfiltration",
		"account manipulation", "cross account",
	},
	"collusion": {
		"collusion", "insider", "internal", "account manipulation",
	},
	"data-theft": {
		"data", "exfiltration", "collection", "theft",
	},
	"identity-theft": {
		"identity theft", "identity", "falsifying identity",
		"document", "credential",
	},
	"advance-fee-fraud": {
		"advance fee", "fee", "payment", "social engineering",
	},
	"first-party-fraud": {
		"first party", "bust-out", "churning", "dispute",
		"refund", "policy abuse",
	},
	"bust-out": {
		"bust-out", "bust out", "churning", "dispute",
		"credit", "refund",
	},
	"investment-scam": {
		"investment", "scam", "social engineering",
		"fraudulent purchase", "wire",
	},
	"social-engineering": {
		"social engineering", "phishing", "impersonat",
		"trust", "spearphishing",
	},
	"authorized-push-payment": {
		"authorized push", "payment", "wire", "transfer",
		"social engineering",
	},
	"documentary-fraud": {
		"document", "falsify", "identity document",
		"fake", "fabricat",
	},
	"loan-fraud": {
		"loan", "application", "falsify", "document",
		"identity",
	},
	"vendor-impersonation": {
		"vendor", "impersonat", "supply chain",
		"business email", "invoice",
	},
	"healthcare-fraud": {
		"healthcare", "billing", "claim", "falsify",
		"provider", "upcoding",
	},
	"phantom-billing": {
		"phantom", "billing", "claim", "fraudulent",
		"falsify",
	},
	"upcoding": {
		"upcoding", "billing", "claim", "fraudulent",
	},
	"benefit-fraud": {
		"benefit", "government", "claim", "identity",
		"fraudulent",
	},
	"tax-fraud": {
		"tax", "fraudulent", "identity", "document",
		"falsify",
	},
	"malware": {
		"malware", "trojan", "execution", "hijack",
		"resource hijacking",
	},
	"unauthorized-transaction": {
		"unauthorized", "transaction", "fraudulent transaction",
		"account takeover",
	},
}
