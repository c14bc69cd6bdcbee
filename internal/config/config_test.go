package config

import "testing"

func TestLoad_PricingDefaultsAndOverrides(t *testing.T) {
	unset(t, "DEFAULT_MARGIN", "PAPER_REAM_COST", "INCLUDE_PAPER", "HORIZON_MONTHS", "APP_ENV", "DISCOUNT_RATE", "SELF_FUNDED_MONTHS")
	t.Setenv("OVERAGE_PENALTY", "1.10")
	t.Setenv("DISCOUNT_RATE", "not-a-number")

	cfg := Load()

	if !cfg.IsDev() {
		t.Fatalf("expected development by default, got %q", cfg.AppEnv)
	}
	if cfg.Pricing.Margin != 0.30 || cfg.Pricing.PaperReamCost != 2.80 || !cfg.Pricing.IncludePaper {
		t.Fatalf("unexpected pricing defaults: %+v", cfg.Pricing)
	}
	if cfg.Pricing.OveragePenalty != 1.10 {
		t.Fatalf("OveragePenalty = %v, want 1.10", cfg.Pricing.OveragePenalty)
	}
	if cfg.Pricing.DiscountRate != 0 {
		t.Fatalf("invalid DISCOUNT_RATE must fall back to 0, got %v", cfg.Pricing.DiscountRate)
	}
	if cfg.Pricing.SelfFundedMonths != 36 {
		t.Fatalf("SelfFundedMonths = %d, want 36", cfg.Pricing.SelfFundedMonths)
	}

	s := cfg.Pricing.Settings()
	if s.OveragePenalty != 1.10 || s.HorizonMonths != 36 || s.Paper.ReamCost != 2.80 {
		t.Fatalf("unexpected settings: %+v", s)
	}
}

func TestIsDev(t *testing.T) {
	for env, want := range map[string]bool{"development": true, "dev": true, "production": false} {
		if got := (Config{AppEnv: env}).IsDev(); got != want {
			t.Fatalf("IsDev(%q) = %v, want %v", env, got, want)
		}
	}
}
