package sqlstore

// MySQLSchema returns the statements that create the record and relation tables
// New expects.
func MySQLSchema(recordTableName, relationTableName string) []string {
	return []string{
		`create table if not exists ` + recordTableName + ` (
			position     int not null,
			id           varchar(64) not null,
			title        varchar(1024) not null,
			kind_id      varchar(64) not null,
			fields       longtext not null,
			created_at   varchar(40) not null,
			updated_at   varchar(40) not null,
			tags         text not null,
			status       varchar(32) not null,
			priority     varchar(32) not null,
			description  text not null,
			deleted_at   varchar(40),

			primary key(position),
			index by_id (id)
		)`,
		`create table if not exists ` + relationTableName + ` (
			position     int not null,
			id           varchar(64) not null,
			source_id    varchar(64) not null,
			target_id    varchar(64) not null,
			type         varchar(64) not null,
			created_at   varchar(40) not null,
			metadata     text not null,

			primary key(position),
			index by_source_type (source_id, type)
		)`,
	}
}
