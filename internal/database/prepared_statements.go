package database

import "github.com/gocql/gocql"

// Requêtes CQL du journal d'audit.
const (
	cqlCreateAuditLogs = `CREATE TABLE IF NOT EXISTS audit_logs (
		resource text,
		resource_id text,
		id timeuuid,
		user_id text,
		action text,
		old_value text,
		new_value text,
		ip_address text,
		user_agent text,
		success boolean,
		error_msg text,
		timestamp timestamp,
		PRIMARY KEY ((resource, resource_id), id)
	) WITH CLUSTERING ORDER BY (id DESC)`

	CQLInsertAuditLog = `INSERT INTO audit_logs (
		resource, resource_id, id, user_id, action, old_value, new_value,
		ip_address, user_agent, success, error_msg, timestamp
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	CQLSelectAuditByResource = `SELECT id, user_id, action, old_value, new_value,
		ip_address, user_agent, success, error_msg, timestamp
		FROM audit_logs WHERE resource = ? AND resource_id = ? LIMIT ?`
)

// EnsureAuditSchema crée la table audit_logs si le rôle Scylla en a le droit.
func EnsureAuditSchema(session *gocql.Session) error {
	return session.Query(cqlCreateAuditLogs).Exec()
}
