package validate

import (
	"time"

	"github.com/coolbeans/deungi/pkg/extract"
)

// ValidationTier is one group of checks. Tiers never short-circuit each
// other: every registered tier runs on every call.
type ValidationTier interface {
	// Name returns the category recorded on the tier's issues.
	Name() Category

	// Run executes the tier's checks against the provided context.
	Run(validationContext *ValidationContext) *TierResult
}

// TierResult collects the checks run and the issues raised by one tier.
type TierResult struct {
	Tier   Category
	Checks int
	Issues []Issue
}

func newTierResult(tier Category) *TierResult {
	return &TierResult{Tier: tier, Issues: make([]Issue, 0)}
}

// check records one logical check and the issues it raised. A check
// counts once no matter how many issues it emits.
func (tierResult *TierResult) check(issues ...Issue) {
	tierResult.Checks++
	for _, issue := range issues {
		issue.Category = tierResult.Tier
		tierResult.Issues = append(tierResult.Issues, issue)
	}
}

// TierPipeline executes validation tiers in registration order.
type TierPipeline struct {
	tiers []ValidationTier
}

// NewTierPipeline creates a pipeline with the four standard tiers.
func NewTierPipeline() *TierPipeline {
	tierPipeline := &TierPipeline{tiers: make([]ValidationTier, 0, 4)}
	tierPipeline.RegisterDefaultTiers()
	return tierPipeline
}

// RegisterTier adds a tier to the pipeline. Tiers execute in registration
// order.
func (tierPipeline *TierPipeline) RegisterTier(tier ValidationTier) {
	tierPipeline.tiers = append(tierPipeline.tiers, tier)
}

// RegisterDefaultTiers registers format, arithmetic, context and
// cross-check tiers.
func (tierPipeline *TierPipeline) RegisterDefaultTiers() {
	tierPipeline.RegisterTier(NewFormatTier())
	tierPipeline.RegisterTier(NewArithmeticTier())
	tierPipeline.RegisterTier(NewContextTier())
	tierPipeline.RegisterTier(NewCrosscheckTier())
}

// Tiers returns the names of the registered tiers in execution order.
func (tierPipeline *TierPipeline) Tiers() []Category {
	names := make([]Category, 0, len(tierPipeline.tiers))
	for _, tier := range tierPipeline.tiers {
		names = append(names, tier.Name())
	}
	return names
}

// Validate runs every registered tier and aggregates the results.
func (tierPipeline *TierPipeline) Validate(registry *extract.Registry, opts ...Option) *Result {
	validationOptions := options{clock: time.Now}
	for _, opt := range opts {
		opt(&validationOptions)
	}

	if registry == nil {
		registry = &extract.Registry{}
	}

	validationContext := &ValidationContext{
		Registry:       registry,
		EstimatedPrice: validationOptions.estimatedPrice,
		RiskScore:      validationOptions.riskScore,
		AdvisoryText:   validationOptions.advisoryText,
		tally:          recount(registry),
	}

	tierResults := make([]*TierResult, 0, len(tierPipeline.tiers))
	for _, tier := range tierPipeline.tiers {
		tierResults = append(tierResults, tier.Run(validationContext))
	}

	return buildResult(tierResults, validationOptions.clock().UTC())
}
