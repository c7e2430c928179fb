// Package auditapi talks to the xcelera audit service.
//
// Client.RequestAudit posts one audit request and sorts failures into three tiers: failures the
// service reports in its JSON envelope and transport failures come back as an AuditResponse with
// Success false, while non-JSON error responses surface as UnexpectedServer errors. The GitHub
// integration outcome is decoded into the sealed GitHubIntegration variants.
package auditapi
