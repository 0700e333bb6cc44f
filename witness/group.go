package witness

import "fmt"

// Group identifies a category of witness data. The first NumComponentGroups
// values are the component groups of a transaction in canonical order; their
// ordinals feed nonce derivation and fix the order of the transaction root.
type Group uint8

const (
	Inputs Group = iota
	Outputs
	Commands
	Attachments
	Notary
	TimeWindow
	Signers
	References
	Parameters

	PrivacySalt
	InputNonces
	ReferenceNonces
	SerializedInputUTXOs
	SerializedReferenceUTXOs
)

// NumComponentGroups is the number of groups hashed into the transaction id.
const NumComponentGroups = int(Parameters) + 1

// Kind tells how a group takes part in hashing.
type Kind uint8

const (
	// KindStandard groups hold components of a single schema and are
	// leaf hashed.
	KindStandard Kind = iota
	// KindOutput holds transaction states keyed by state type, leaf hashed
	// like standard groups.
	KindOutput
	// KindUTXO holds the serialized states consumed or referenced by the
	// transaction. They are hashed with their own nonces only.
	KindUTXO
	// KindMetadata holds the salt and nonces feeding other groups' hashes.
	KindMetadata
)

var groupInfo = [...]struct {
	name string
	key  string
	kind Kind
}{
	Inputs:                   {"Inputs", "inputs", KindStandard},
	Outputs:                  {"Outputs", "outputs", KindOutput},
	Commands:                 {"Commands", "commands", KindStandard},
	Attachments:              {"Attachments", "attachments", KindStandard},
	Notary:                   {"Notary", "notary", KindStandard},
	TimeWindow:               {"TimeWindow", "time_window", KindStandard},
	Signers:                  {"Signers", "signers", KindStandard},
	References:               {"References", "references", KindStandard},
	Parameters:               {"Parameters", "parameters", KindStandard},
	PrivacySalt:              {"PrivacySalt", "privacy_salt", KindMetadata},
	InputNonces:              {"InputNonces", "input_nonces", KindMetadata},
	ReferenceNonces:          {"ReferenceNonces", "reference_nonces", KindMetadata},
	SerializedInputUTXOs:     {"SerializedInputUTXOs", "serialized_input_utxos", KindUTXO},
	SerializedReferenceUTXOs: {"SerializedReferenceUTXOs", "serialized_reference_utxos", KindUTXO},
}

func (g Group) valid() bool { return int(g) < len(groupInfo) }

func (g Group) String() string {
	if !g.valid() {
		return fmt.Sprintf("Group(%d)", uint8(g))
	}
	return groupInfo[g].name
}

// JSONKey returns the key of the group in the witness payload.
func (g Group) JSONKey() string {
	if !g.valid() {
		return ""
	}
	return groupInfo[g].key
}

// Kind returns the hashing behavior of the group.
func (g Group) Kind() Kind {
	if !g.valid() {
		return KindMetadata
	}
	return groupInfo[g].kind
}

// Hashed reports whether the group produces leaf hashes for the
// transaction root.
func (g Group) Hashed() bool {
	return g.Kind() == KindStandard || g.Kind() == KindOutput
}

// ComponentGroups returns the leaf hashed groups in canonical order.
func ComponentGroups() []Group {
	groups := make([]Group, NumComponentGroups)
	for i := range groups {
		groups[i] = Group(i)
	}
	return groups
}

// ParseGroup returns the group whose JSON key or name is s.
func ParseGroup(s string) (Group, error) {
	for i, info := range groupInfo {
		if info.key == s || info.name == s {
			return Group(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidGroup, s)
}
