// ABOUTME: Deterministic prompt assembly for the reasoning service
// ABOUTME: Pure function of request, config, scenario guidance, and business context

package services

import (
	"fmt"
	"strings"

	"github.com/dbimpact/db-impact-analyzer/models"
	"github.com/dbimpact/db-impact-analyzer/scenarios"
)

// featureReference explains the domain semantics of the configuration fields
// so the reasoner needs no outside knowledge of managed-database behavior.
const featureReference = `FEATURE REFERENCE:
- Multi-AZ: synchronous replication to a standby in a different availability
  zone with automatic failover. Failover completes in minutes with no data
  loss. Without Multi-AZ, recovery means restoring a new instance from backup.
- PITR (point-in-time recovery): continuous transaction-log capture allowing
  restore to any second within the retention window. Without PITR, restores
  land on the most recent snapshot only.
- Backup retention: how many days of snapshots and transaction logs are kept.
  Retention of 0 disables automated backups entirely.
- Read replicas: asynchronous copies serving read traffic. They do not fail
  over automatically and may lag behind the primary.
- Storage autoscaling: when max_allocated_storage exceeds allocated_storage,
  storage grows automatically before exhaustion.`

// outputRequirements is the strict schema instruction appended to every prompt.
const outputRequirements = `OUTPUT REQUIREMENTS:

Return ONLY valid JSON matching this exact schema:

{
  "sla_violation": boolean,
  "rto_violation": boolean,
  "rpo_violation": boolean,
  "expected_outage_time_minutes": integer >= 0,
  "business_severity": "LOW" | "MEDIUM" | "HIGH" | "CRITICAL",
  "why": [array of strings explaining your reasoning],
  "recommendations": [array of strings with actionable fixes],
  "confidence": float between 0.0 and 1.0
}

REASONING RULES:
- Base predictions on the ACTUAL configuration provided, not generic best practices.
- Use historical incident data to estimate recovery times: prioritize specific
  incident durations over general ranges, and never estimate below observed
  historical times.
- Compare predicted recovery time and data loss against the RTO/RPO policies.
- Explain your reasoning clearly in the "why" array.

CONFIDENCE GUIDELINES:
- High (0.8-1.0): direct historical data for this exact scenario.
- Medium (0.6-0.79): extrapolating from similar scenarios.
- Low (<0.6): missing critical data.

Return ONLY the JSON, no additional text.`

// BuildPrompt renders the full reasoning instruction. It is side-effect free
// and deterministic: identical inputs always produce identical text. When
// whatIf is true, baseline must be non-nil and a configuration-delta block
// precedes the task statement.
func BuildPrompt(
	req models.AnalysisRequest,
	cfg models.DatabaseConfig,
	scenario scenarios.Definition,
	businessContext string,
	whatIf bool,
	baseline *models.DatabaseConfig,
) string {
	var b strings.Builder

	if whatIf && baseline != nil {
		writeDeltaBlock(&b, *baseline, cfg)
	}

	fmt.Fprintf(&b, `You are an expert Site Reliability Engineer analyzing database failure scenarios.

TASK:
Assess the impact if database %q experiences a %s.

You must answer these 5 critical questions:
1. sla_violation: Will this failure breach our SLA commitments? (true/false)
2. rto_violation: Will recovery time exceed our RTO policy? (true/false)
3. rpo_violation: Will data loss exceed our RPO policy? (true/false)
4. expected_outage_time_minutes: How long will we be down? (integer)
5. business_severity: How critical is this? (LOW/MEDIUM/HIGH/CRITICAL)

`, req.DBIdentifier, scenario.Name)

	b.WriteString(featureReference)
	b.WriteString("\n\n---\n")
	b.WriteString(scenario.Guidance)
	b.WriteString("\n\n---\nDATABASE CONFIGURATION:\n")
	writeConfig(&b, cfg)
	b.WriteString("\n---\nBUSINESS POLICIES & HISTORICAL DATA:\n")
	b.WriteString(businessContext)
	b.WriteString("\n\n---\n")
	b.WriteString(outputRequirements)

	return b.String()
}

// writeConfig renders a configuration snapshot in a fixed field order.
func writeConfig(b *strings.Builder, cfg models.DatabaseConfig) {
	fmt.Fprintf(b, "Database: %s\n", cfg.Identifier)
	fmt.Fprintf(b, "Engine: %s", cfg.Engine)
	if cfg.EngineVersion != "" {
		fmt.Fprintf(b, " %s", cfg.EngineVersion)
	}
	b.WriteString("\n")
	fmt.Fprintf(b, "Instance Class: %s\n", cfg.InstanceClass)
	fmt.Fprintf(b, "Multi-AZ: %t\n", cfg.MultiAZ)
	fmt.Fprintf(b, "PITR Enabled: %t\n", cfg.PITREnabled)
	fmt.Fprintf(b, "Backup Retention: %d days\n", cfg.BackupRetentionDays)
	fmt.Fprintf(b, "Allocated Storage: %d GB (max %d GB)\n", cfg.AllocatedStorage, cfg.MaxAllocatedStorage)
	fmt.Fprintf(b, "Read Replicas: %s\n", renderReplicas(cfg.ReadReplicas))
	fmt.Fprintf(b, "Storage Encrypted: %t\n", cfg.StorageEncrypted)
	fmt.Fprintf(b, "Auto Minor Version Upgrade: %t\n", cfg.AutoMinorVersionUpgrade)
}

func renderReplicas(replicas []string) string {
	if len(replicas) == 0 {
		return "none"
	}
	return strings.Join(replicas, ", ")
}

// writeDeltaBlock lists the field-by-field differences between baseline and
// modified and pins the reasoner to the modified state's recovery mechanics.
func writeDeltaBlock(b *strings.Builder, baseline, modified models.DatabaseConfig) {
	b.WriteString("WHAT-IF ANALYSIS: the configuration below is HYPOTHETICAL. It was derived from the current configuration by applying these changes:\n\n")

	changes := configChanges(baseline, modified)
	if len(changes) == 0 {
		b.WriteString("  (no effective changes)\n")
	}
	for _, change := range changes {
		fmt.Fprintf(b, "  - %s\n", change)
	}

	b.WriteString(`
Analyze the scenario against the MODIFIED configuration only. Select the
recovery mechanism the modified state implies (for example, automatic failover
timing if multi_az becomes enabled). Do NOT cite historical figures that only
apply to the baseline configuration, such as past snapshot-restore durations
when the modified state fails over automatically.

---
`)
}

// configChanges returns human-readable per-field deltas, in a fixed order so
// prompt output stays deterministic.
func configChanges(baseline, modified models.DatabaseConfig) []string {
	var changes []string
	add := func(field string, from, to any) {
		changes = append(changes, fmt.Sprintf("%s: %v -> %v", field, from, to))
	}

	if baseline.MultiAZ != modified.MultiAZ {
		add("multi_az", baseline.MultiAZ, modified.MultiAZ)
	}
	if baseline.BackupRetentionDays != modified.BackupRetentionDays {
		add("backup_retention_days", baseline.BackupRetentionDays, modified.BackupRetentionDays)
	}
	if baseline.PITREnabled != modified.PITREnabled {
		add("pitr_enabled", baseline.PITREnabled, modified.PITREnabled)
	}
	if baseline.InstanceClass != modified.InstanceClass {
		add("instance_class", baseline.InstanceClass, modified.InstanceClass)
	}
	if baseline.AllocatedStorage != modified.AllocatedStorage {
		add("allocated_storage", baseline.AllocatedStorage, modified.AllocatedStorage)
	}
	if baseline.MaxAllocatedStorage != modified.MaxAllocatedStorage {
		add("max_allocated_storage", baseline.MaxAllocatedStorage, modified.MaxAllocatedStorage)
	}
	if !equalStrings(baseline.ReadReplicas, modified.ReadReplicas) {
		add("read_replicas", renderReplicas(baseline.ReadReplicas), renderReplicas(modified.ReadReplicas))
	}
	if baseline.StorageEncrypted != modified.StorageEncrypted {
		add("storage_encrypted", baseline.StorageEncrypted, modified.StorageEncrypted)
	}
	if baseline.AutoMinorVersionUpgrade != modified.AutoMinorVersionUpgrade {
		add("auto_minor_version_upgrade", baseline.AutoMinorVersionUpgrade, modified.AutoMinorVersionUpgrade)
	}

	return changes
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
