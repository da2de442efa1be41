package taxonomy

// ownershipTerms is the built-in 갑구 vocabulary.
var ownershipTerms = []Term{
	{Text: "소유권보존", Right: RightOwnershipPreservation, Risk: RiskSafe},
	{Text: "소유권이전", Right: RightOwnershipTransfer, Risk: RiskSafe},
	{Text: "소유권일부이전", Right: RightOwnershipTransfer, Risk: RiskSafe},
	{Text: "소유권이전청구권가등기", Right: RightProvisionalRegistration, Risk: RiskWarning},
	{Text: "소유권이전담보가등기", Right: RightProvisionalRegistration, Risk: RiskWarning},
	{Text: "가등기", Right: RightProvisionalRegistration, Risk: RiskWarning},
	{Text: "압류", Right: RightSeizure, Risk: RiskDanger},
	{Text: "가압류", Right: RightProvisionalSeizure, Risk: RiskDanger},
	{Text: "가처분", Right: RightProvisionalDisposition, Risk: RiskDanger},
	{Text: "임의경매개시결정", Right: RightAuctionOrder, Risk: RiskDanger},
	{Text: "강제경매개시결정", Right: RightAuctionOrder, Risk: RiskDanger},
	{Text: "경매개시결정", Right: RightAuctionOrder, Risk: RiskDanger},
	{Text: "신탁등기", Right: RightTrust, Risk: RiskWarning},
	{Text: "신탁", Right: RightTrust, Risk: RiskWarning},
	{Text: "환매특약", Right: RightRedemption, Risk: RiskWarning},
	{Text: "예고등기", Right: RightWarningRegistration, Risk: RiskWarning},
}

// encumbranceTerms is the built-in 을구 vocabulary.
var encumbranceTerms = []Term{
	{Text: "근저당권설정", Right: RightMortgage, Risk: RiskWarning},
	{Text: "저당권설정", Right: RightMortgage, Risk: RiskWarning},
	{Text: "근저당권", Right: RightMortgage, Risk: RiskWarning},
	{Text: "근저당권이전", Right: RightMortgageTransfer, Risk: RiskWarning},
	{Text: "근저당권변경", Right: RightMortgageModification, Risk: RiskInfo},
	{Text: "전세권설정", Right: RightDepositRight, Risk: RiskWarning},
	{Text: "전세권", Right: RightDepositRight, Risk: RiskWarning},
	{Text: "전세권이전", Right: RightDepositRightTransfer, Risk: RiskWarning},
	{Text: "전세권변경", Right: RightDepositRightModification, Risk: RiskInfo},
	{Text: "지상권설정", Right: RightSurfaceRight, Risk: RiskWarning},
	{Text: "지상권", Right: RightSurfaceRight, Risk: RiskWarning},
	{Text: "임차권등기명령", Right: RightLeaseRegistration, Risk: RiskDanger},
	{Text: "주택임차권", Right: RightLeaseRegistration, Risk: RiskDanger},
	{Text: "임차권설정", Right: RightLeaseRegistration, Risk: RiskDanger},
	{Text: "압류", Right: RightSeizure, Risk: RiskDanger},
	{Text: "가압류", Right: RightProvisionalSeizure, Risk: RiskDanger},
	{Text: "담보가등기", Right: RightProvisionalRegistration, Risk: RiskWarning},
	{Text: "가등기", Right: RightProvisionalRegistration, Risk: RiskWarning},
}
