package i18n

const (
	CommonInternalServerError = "common.internal_server_error"
	CommonBadParam            = "common.bad_param"
	CommonRecordNotFound      = "common.record_not_found"
	CommonUnauthenticated     = "common.unauthenticated"
	CommonForbidden           = "security.forbidden"
)
