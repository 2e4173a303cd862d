package dbms

import "github.com/ssyssy/ottertune/core/catalog"

func pgParams() []catalog.ParameterDescriptor {
	return []catalog.ParameterDescriptor{
		{Name: "shared_buffers", VarType: catalog.VarTypeInteger, Unit: catalog.UnitBytes, Tunable: true, Default: "128MB"},
		{Name: "checkpoint_timeout", VarType: catalog.VarTypeInteger, Unit: catalog.UnitMilliseconds, Tunable: true, Default: "5min"},
		{Name: "enable_seqscan", VarType: catalog.VarTypeBool, Tunable: true, Default: "on"},
		{Name: "wal_sync_method", VarType: catalog.VarTypeEnum, EnumValues: []string{"fsync", "fdatasync", "open_sync"}, Tunable: true, Default: "fdatasync"},
		{Name: "random_page_cost", VarType: catalog.VarTypeReal, Tunable: true, Default: "4.0"},
		{Name: "DateStyle", VarType: catalog.VarTypeString, Tunable: false, Default: "ISO, MDY"},
	}
}

func pgMetrics() []catalog.MetricDescriptor {
	return []catalog.MetricDescriptor{
		{Name: "pg_stat_database.xact_commit", MetricType: catalog.MetricCounter},
		{Name: "pg_stat_database.datname", MetricType: catalog.MetricInfo},
		{Name: "pg_stat_archiver.archived_count", MetricType: catalog.MetricCounter},
		{Name: "pg_stat_bgwriter.buffers_alloc", MetricType: catalog.MetricCounter},
	}
}

func strp(s string) *string { return &s }
