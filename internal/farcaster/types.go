package farcaster

// userByAddressResponse is the hub's answer for /v1/user-by-address.
type userByAddressResponse struct {
	FID uint64 `json:"fid"`
}

// hubErrNotFound is the hub error code for a lookup miss.
const hubErrNotFound = "not_found"

// hubErrorResponse is the hub error envelope.
type hubErrorResponse struct {
	ErrCode string `json:"errCode"`
	Details string `json:"details"`
}

func (r hubErrorResponse) message() string {
	if r.Details == "" {
		return r.ErrCode
	}
	return r.ErrCode + ": " + r.Details
}

// channelInviteRequest is the body of POST /fc/channel-invites.
type channelInviteRequest struct {
	ChannelID  string `json:"channelId"`
	InviterFID uint64 `json:"inviterFid"`
	InviteFID  uint64 `json:"inviteFid"`
	Role       string `json:"role"`
}

// channelInviteResponse is the success body of POST /fc/channel-invites.
// Success is nil when the platform omits it.
type channelInviteResponse struct {
	Result *struct {
		Success *bool `json:"success"`
	} `json:"result"`
}

func (r channelInviteResponse) rejected() bool {
	return r.Result != nil && r.Result.Success != nil && !*r.Result.Success
}

// apiErrorResponse is the Warpcast error envelope.
type apiErrorResponse struct {
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

func (r apiErrorResponse) message() string {
	if len(r.Errors) == 0 {
		return ""
	}
	return r.Errors[0].Message
}
