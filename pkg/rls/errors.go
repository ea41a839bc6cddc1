package rls

import "errors"

var (
	ErrInvalidTenantIdentity = errors.New("rls.invalid_tenant_identity")
	ErrInvalidSetting        = errors.New("rls.invalid_setting_name")
	ErrInvalidIdentifier     = errors.New("rls.invalid_identifier")
	ErrSetTenantContext      = errors.New("rls.set_tenant_context_failed")
	ErrManifestInvalid       = errors.New("rls.manifest_invalid")
	ErrPolicyFileRead        = errors.New("rls.policy_file_read_failed")
	ErrApplyPolicies         = errors.New("rls.apply_policies_failed")
	ErrCatalogQuery          = errors.New("rls.catalog_query_failed")
)
