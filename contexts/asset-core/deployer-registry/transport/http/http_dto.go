package httptransport

type SetAuthorizationRequest struct {
	Authorized bool `json:"authorized"`
}

type AuthorizationResponse struct {
	Identity   string `json:"identity"`
	Authorized bool   `json:"authorized"`
}

type ListAuthorizedResponse struct {
	Items []AuthorizationResponse `json:"items"`
}

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
