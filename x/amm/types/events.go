package types

// Event types logged by the engine
const (
	EventTypePoolCreated        = "amm_pool_created"
	EventTypeAddLiquidity       = "amm_add_liquidity"
	EventTypeIncreaseLiquidity  = "amm_increase_liquidity"
	EventTypeRemoveLiquidity    = "amm_remove_liquidity"
	EventTypeSwap               = "amm_swap"
	EventTypeFeesClaimed        = "amm_fees_claimed"
	EventTypeFeesCompounded     = "amm_fees_compounded"
	EventTypeProtocolFeesDrawn  = "amm_protocol_fees_withdrawn"
	EventTypeCreatorFeesDrawn   = "amm_creator_fees_withdrawn"
	EventTypePositionTransfer   = "amm_position_transferred"
	EventTypePositionDestroyed  = "amm_position_destroyed"
	EventTypeMetadataRefreshed  = "amm_position_metadata_refreshed"
)

// Event attribute keys
const (
	AttributeKeyPoolID    = "pool_id"
	AttributeKeyKind      = "kind"
	AttributeKeyOwner     = "owner"
	AttributeKeyPosition  = "position_id"
	AttributeKeyTokenIn   = "token_in"
	AttributeKeyTokenOut  = "token_out"
	AttributeKeyAmountIn  = "amount_in"
	AttributeKeyAmountOut = "amount_out"
	AttributeKeyAmountA   = "amount_a"
	AttributeKeyAmountB   = "amount_b"
	AttributeKeyShares    = "shares"
	AttributeKeyFee       = "fee"
)
