// ABOUTME: Static registry of database failure scenario definitions
// ABOUTME: Holds descriptive guidance text injected into reasoning prompts, never executable logic

package scenarios

import (
	"fmt"
	"sort"

	"github.com/dbimpact/db-impact-analyzer/models"
)

// Definition describes one failure scenario. Definitions are loaded once at
// package init and are read-only thereafter.
type Definition struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Description    string   `json:"description"`
	Guidance       string   `json:"-"`
	RequiredFields []string `json:"required_db_fields"`
	Tags           []string `json:"tags"`
}

// Summary is the listing view of a scenario, without the guidance block.
type Summary struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
}

// Lookup returns the definition for id, or ErrNotFound.
func Lookup(id string) (Definition, error) {
	def, ok := registry[id]
	if !ok {
		return Definition{}, fmt.Errorf("%w: scenario %q", models.ErrNotFound, id)
	}
	return def, nil
}

// Exists reports whether id names a registered scenario.
func Exists(id string) bool {
	_, ok := registry[id]
	return ok
}

// List returns summaries of all registered scenarios, sorted by id.
func List() []Summary {
	out := make([]Summary, 0, len(registry))
	for _, def := range registry {
		out = append(out, Summary{
			ID:          def.ID,
			Name:        def.Name,
			Description: def.Description,
			Tags:        def.Tags,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

var registry = map[string]Definition{
	"primary_db_failure": {
		ID:          "primary_db_failure",
		Name:        "Primary Database Failure",
		Description: "Analyzes impact when the primary DB instance fails completely (hardware failure, AZ outage, etc.)",
		Guidance: `SCENARIO: Primary database instance has failed completely (hardware failure, AZ outage, or critical error).

ANALYSIS REQUIRED:
1. Check Multi-AZ configuration to determine failover capability:
   - Multi-AZ ENABLED: automatic failover to the standby in a different AZ.
     Historical data shows Multi-AZ failovers complete in under 5 minutes.
     Estimate RTO at 3-5 minutes; data loss is none (synchronous replication).
   - Multi-AZ DISABLED: manual recovery via snapshot restore is required.
     Historical data shows snapshot restores take 60-90 minutes for
     db.m5.large instances. Estimate RTO at 60-120 minutes depending on
     instance class and past incidents. Data loss equals time since the last
     backup if PITR is disabled.

2. Assess RPO (data loss) from the backup configuration:
   - PITR ENABLED: restore to any second within the retention period;
     data loss is seconds to minutes (continuous transaction-log capture).
   - PITR DISABLED: restore only to the last snapshot, typically taken once
     daily overnight; data loss is hours up to 24 hours depending on when the
     failure occurred.

3. Compare estimated recovery time against the RTO policy: with Multi-AZ
   disabled and an RTO policy under 30 minutes, expect an RTO violation;
   even with Multi-AZ enabled, a sub-10-minute policy may still be violated
   by the 3-5 minute failover.

4. Compare estimated data loss against the RPO policy: PITR disabled with an
   RPO policy under 1 hour means a likely RPO violation; PITR enabled
   typically meets RPO.

RECOMMENDATIONS TO CONSIDER (prioritize by impact):
- If Multi-AZ is disabled, enable Multi-AZ to cut RTO from 60-90 minutes to under 5.
- If PITR is disabled, enable PITR to cut RPO from hours to seconds.
- If backup retention is under 7 days and compliance requirements exist, increase retention.
- If the instance class is small, consider a larger class for faster restore operations.`,
		RequiredFields: []string{"multi_az", "pitr_enabled", "backup_retention_days", "instance_class"},
		Tags:           []string{"availability", "disaster-recovery", "critical"},
	},

	"replica_lag": {
		ID:          "replica_lag",
		Name:        "Read Replica Lag",
		Description: "Analyzes impact when read replicas fall significantly behind the primary (>5 minutes)",
		Guidance: `SCENARIO: Read replicas are experiencing significant replication lag (more than 5 minutes behind the primary).

ANALYSIS REQUIRED:
1. Check the read replica configuration: a single replica is higher risk
   (all read traffic is affected when it lags); multiple replicas allow
   routing around the lagging one.

2. Assess the impact of stale data: read-heavy workloads receive data more
   than 5 minutes old; writes to the primary are unaffected; applications
   reading from replicas may show inconsistent or outdated information.

3. Review historical incident data for past replica lag and its resolution
   time. Without historical data, replica lag typically resolves in 10-30
   minutes depending on cause.

4. Evaluate severity against business policies: if the SLA requires real-time
   or near-real-time reads, this is an SLA violation; analytics or
   development workloads tolerate staleness and rank lower. The primary
   remains operational, so this is typically MEDIUM severity unless the
   business requires fresh reads.

RECOMMENDATIONS TO CONSIDER:
- If there is a single replica, add replicas for redundancy.
- If lag is sustained, investigate primary load and query patterns.
- If lag recurs, consider a larger replica instance class.
- If the business requires real-time reads, route critical reads to the primary or add a read-through cache.
- Alert on replication lag at a 2-minute threshold.`,
		RequiredFields: []string{"read_replicas", "instance_class", "engine"},
		Tags:           []string{"performance", "read-scaling", "data-consistency"},
	},

	"backup_failure": {
		ID:          "backup_failure",
		Name:        "Backup Failure",
		Description: "Analyzes impact when automated backups fail or the latest backup is corrupted",
		Guidance: `SCENARIO: Automated backups have failed, or the latest backup is corrupted and unusable.

ANALYSIS REQUIRED:
1. Assess exposure if the primary fails right now: with no recent backup,
   recovery falls back to an older one and data loss equals the time since
   the last known-good backup. PITR ENABLED partially mitigates this via
   transaction logs; PITR DISABLED means complete loss back to the last
   successful snapshot.

2. Calculate the maximum data-loss exposure against the RPO policy: a last
   good backup 2+ days old means 48+ hours of potential loss, far beyond a
   typical 1-4 hour production RPO.

3. Evaluate remaining recovery capability: Multi-AZ still provides failover
   but does not protect against data corruption. A primary failure combined
   with an unusable backup and no PITR is a catastrophic-loss scenario.

4. Check compliance exposure: backup failures can breach SOC2, HIPAA, or GDPR
   backup requirements; some policies require daily successful backups.

5. Severity guidance: CRITICAL for a production database with PITR disabled
   and a strict RPO policy; HIGH when PITR still provides recovery points;
   MEDIUM for non-production databases with recent backups.

RECOMMENDATIONS TO CONSIDER (prioritize by urgency):
- Investigate and fix the backup failure immediately (disk space, permissions, backup window).
- If PITR is disabled, enable it immediately as a safety net while backups are repaired.
- If retention is under 7 days, widen the recovery window.
- Alert on the first backup failure and test restores quarterly.`,
		RequiredFields: []string{"backup_retention_days", "pitr_enabled", "multi_az"},
		Tags:           []string{"disaster-recovery", "compliance", "data-protection", "critical"},
	},

	"storage_pressure": {
		ID:          "storage_pressure",
		Name:        "Storage Pressure",
		Description: "Analyzes impact when storage utilization reaches 85%+ of allocated capacity",
		Guidance: `SCENARIO: Database storage utilization has reached 85% or more of allocated capacity.

ANALYSIS REQUIRED:
1. Calculate remaining headroom from allocated_storage assuming 85%+
   utilization. If max_allocated_storage exceeds allocated_storage,
   autoscaling will expand storage before exhaustion; if it is unset or
   already reached, manual intervention is required.

2. Estimate time to exhaustion qualitatively: at 85% utilization expect days
   to weeks, not hours; active databases typically grow 5-10% per month.

3. Assess the impact at 100%: write operations fail, the instance may become
   unresponsive, transaction logs can fill and break replication, and
   snapshots may fail for lack of space. That outcome is CRITICAL.

4. Factor in autoscaling: with autoscaling headroom available, expansion is
   seamless and severity drops to MEDIUM; without it, severity is HIGH or
   CRITICAL and a manual expansion (15-30 minutes) must be scheduled before
   exhaustion. Storage exhaustion is a full outage against availability SLAs.

RECOMMENDATIONS TO CONSIDER (prioritize by urgency):
- If max_allocated_storage is not set, enable storage autoscaling with a 2-3x ceiling.
- If the autoscaling ceiling is already reached, raise it or move to a larger storage type.
- If utilization is 90%+, expand manually now rather than waiting for autoscaling.
- Alert on storage at a 70% threshold and investigate growth patterns.`,
		RequiredFields: []string{"allocated_storage", "max_allocated_storage", "engine", "instance_class"},
		Tags:           []string{"capacity", "availability", "operational"},
	},
}
