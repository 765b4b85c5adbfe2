package dataset

import (
	"github.com/XingXingYuoos/sleep-kit-project/annotation"
	"github.com/XingXingYuoos/sleep-kit-project/channel"
)

// mncAliases is shared by the MNC sub-datasets, whose recordings carry the
// same chin electrode spellings.
var mncAliases = channel.AliasTable{
	channel.EMG:    {"cchin_l", "chin", "cchin"},
	channel.EMGref: {"rchin_c", "lchin"},
}

// hpapAliases is shared by the two HomePAP waves.
var hpapAliases = channel.AliasTable{
	channel.C3:     {"C3-M2"},
	channel.C4:     {"C4-M1"},
	channel.E1:     {"E1-M2", "E-1", "L-EOG", "LOC", "E1-E2"},
	channel.E2:     {"E2-M1", "E-2", "R-EOG", "ROC"},
	channel.M2:     {"E2-M1"},
	channel.EMG:    {"LCHIN", "CHIN", "CHIN1-CHIN2", "Lchin-Cchin", "EMG1", "L.", "Chin1", "Chin EMG"},
	channel.EMGref: {"CCHIN", "RCHIN", "EMG2", "C.", "Chin2"},
}

// mrosAliases is shared by the two MrOS visits.
var mrosAliases = channel.AliasTable{
	channel.C4:     {"C4-A1"},
	channel.C3:     {"C3-A2"},
	channel.E1:     {"LOC"},
	channel.E2:     {"ROC"},
	channel.M1:     {"A1"},
	channel.M2:     {"A2"},
	channel.EMG:    {"LChin", "L Chin", "L Chin-R Chin"},
	channel.EMGref: {"RChin", "R Chin"},
}

// Builtin returns the built-in dataset rule table. The table covers the
// public PSG collections the toolkit ships support for; callers overlay
// site-local datasets with LoadRules.
func Builtin() Table {
	return Table{
		"SHHS1": {
			PSGExt: "edf", AnnoExt: "xml", Format: annotation.FormatProfusion,
			Aliases: channel.AliasTable{
				channel.C4: {"EEG"},
				channel.C3: {"EEG(sec)", "EEG2", "EEG 2", "EEG(SEC)", "EEG sec"},
				channel.E1: {"EOG(L)"},
				channel.E2: {"EOG(R)"},
			},
		},
		"SHHS2": {
			PSGExt: "edf", AnnoExt: "xml", Format: annotation.FormatProfusion,
			Aliases: channel.AliasTable{
				channel.C4: {"EEG"},
				channel.C3: {"EEG(sec)", "EEG2"},
				channel.E1: {"EOG(L)"},
				channel.E2: {"EOG(R)"},
			},
		},
		"CCSHS": {
			PSGExt: "edf", AnnoExt: "xml", Format: annotation.FormatProfusion,
			Aliases: channel.AliasTable{
				channel.E1:     {"LOC"},
				channel.E2:     {"ROC"},
				channel.M1:     {"A1"},
				channel.M2:     {"A2"},
				channel.EMG:    {"EMG1"},
				channel.EMGref: {"EMG2"},
			},
		},
		"SOF": {
			PSGExt: "edf", AnnoExt: "xml", Format: annotation.FormatProfusion,
			Aliases: channel.AliasTable{
				channel.E1:     {"LOC"},
				channel.E2:     {"ROC"},
				channel.M1:     {"A1"},
				channel.M2:     {"A2"},
				channel.EMG:    {"L Chin", "EMG/L"},
				channel.EMGref: {"R Chin", "EMG/R"},
			},
		},
		"CFS": {
			PSGExt: "edf", AnnoExt: "xml", Format: annotation.FormatProfusion,
			Aliases: channel.AliasTable{
				channel.E1:     {"LOC"},
				channel.E2:     {"ROC"},
				channel.EMG:    {"EMG2"},
				channel.EMGref: {"EMG1"},
			},
		},
		"MROS1": {
			PSGExt: "edf", AnnoExt: "xml", Format: annotation.FormatProfusion,
			Aliases: mrosAliases,
		},
		"MROS2": {
			PSGExt: "edf", AnnoExt: "xml", Format: annotation.FormatProfusion,
			Aliases: mrosAliases,
		},
		"MESA": {
			PSGExt: "edf", AnnoExt: "xml", Format: annotation.FormatProfusion,
			Aliases: channel.AliasTable{
				channel.F4: {"EEG1"},
				channel.C4: {"EEG3"},
				channel.O2: {"EEG2"},
				channel.E1: {"EOG-L"},
				channel.E2: {"EOG-R"},
			},
		},
		"HPAP1": {
			PSGExt: "edf", AnnoExt: "xml", Format: annotation.FormatProfusion,
			Aliases: hpapAliases,
		},
		"HPAP2": {
			PSGExt: "edf", AnnoExt: "xml", Format: annotation.FormatProfusion,
			Aliases: hpapAliases,
		},
		"ABC": {
			PSGExt: "edf", AnnoExt: "xml", Format: annotation.FormatProfusion,
			Aliases: channel.AliasTable{
				channel.EMG:    {"Chin2"},
				channel.EMGref: {"Chin1"},
			},
		},
		"STAGES": {
			// No alias table is known for STAGES; channel roles are
			// inferred heuristically from the raw labels.
			PSGExt: "edf", AnnoExt: "csv", Format: annotation.FormatStagesCSV,
			Aliases: nil,
		},
		"MASS13": {
			PSGExt: "edf", AnnoExt: "txt", Format: annotation.FormatMASS,
			Aliases: channel.AliasTable{
				channel.F3:     {"EEG F3-CLE", "EEG F3-LER"},
				channel.F4:     {"EEG F4-CLE", "EEG F4-LER"},
				channel.C3:     {"EEG C3-CLE", "EEG C3-LER"},
				channel.C4:     {"EEG C4-CLE", "EEG C4-LER"},
				channel.O1:     {"EEG O1-CLE", "EEG O1-LER"},
				channel.O2:     {"EEG O2-CLE", "EEG O2-LER"},
				channel.E1:     {"EOG Left Horiz"},
				channel.E2:     {"EOG Right Horiz"},
				channel.M1:     {"EEG A1-CLE"},
				channel.M2:     {"EEG A2-CLE"},
				channel.EMG:    {"EMG Chin1"},
				channel.EMGref: {"EMG Chin2"},
			},
		},
		"HMC": {
			PSGExt: "edf", AnnoExt: "txt", Format: annotation.FormatHMC,
			Aliases: channel.AliasTable{
				channel.F4:  {"EEG F4-M1"},
				channel.C4:  {"EEG C4-M1"},
				channel.O2:  {"EEG O2-M1"},
				channel.C3:  {"EEG C3-M2"},
				channel.EMG: {"EMG chin"},
				channel.E1:  {"EOG E1-M2"},
				channel.E2:  {"EOG E2-M2"},
			},
		},
		"MNC": {
			PSGExt: "edf", AnnoExt: "eannot", Format: annotation.FormatEannot,
			Aliases: nil,
		},
		"SSC": {
			PSGExt: "edf", AnnoExt: "eannot", Format: annotation.FormatEannot,
			Aliases: mncAliases,
		},
		"DHC": {
			PSGExt: "edf", AnnoExt: "eannot", Format: annotation.FormatEannot,
			Aliases: mncAliases,
		},
		"CNC": {
			PSGExt: "edf", AnnoExt: "eannot", Format: annotation.FormatEannot,
			Aliases: mncAliases,
		},
		"NCHSDB": {
			PSGExt: "edf", AnnoExt: "tsv", Format: annotation.FormatTSV,
			Aliases: channel.AliasTable{
				channel.F3: {"EEG F3-M2", "EEG F3"},
				channel.F4: {"EEG F4-M1", "EEG F4"},
				channel.C3: {"EEG C3-M2", "EEG C3"},
				channel.C4: {"EEG C4-M1", "EEG C4"},
				channel.O1: {"EEG O1-M2", "EEG O1"},
				channel.O2: {"EEG O2-M1", "EEG O2"},
				channel.E1: {"EOG LOC-M2", "LOC", "EEG E1"},
				channel.E2: {"EOG ROC-M1", "ROC", "EEG E2"},
				channel.EMG: {
					"EMG Chin1-Chin2", "EMG Chin2-Chin1", "EMG Chin1-Chin3",
					"EMG Chin3-Chin2", "EEG Chin1-Chin2", "Chin1", "EEG Chin1",
				},
				channel.EMGref: {"Chin2", "EEG Chin2"},
			},
		},
		"PHY": {
			// The PHY container has no generic annotation reader; the
			// placeholder format reports not-implemented.
			PSGExt: "mat", AnnoExt: "mat", Format: annotation.FormatPHY,
			Aliases: channel.AliasTable{},
		},
		"DCSM": {
			PSGExt: "edf", AnnoExt: "ids", Format: annotation.FormatDCSM,
			Aliases: channel.AliasTable{
				channel.F3:  {"F3-M2"},
				channel.F4:  {"F4-M1"},
				channel.C3:  {"C3-M2"},
				channel.C4:  {"C4-M1"},
				channel.O1:  {"O1-M2"},
				channel.O2:  {"O2-M1"},
				channel.E1:  {"E1-M2"},
				channel.E2:  {"E2-M2"},
				channel.EMG: {"CHIN"},
			},
		},
		"DOD": {
			// DOD hypnograms arrive as pre-computed stage arrays.
			PSGExt: "h5", AnnoExt: "npy", Format: annotation.FormatArray,
			Aliases: channel.AliasTable{},
		},
		"WSC": {
			PSGExt: "edf", AnnoExt: "txt", Format: annotation.FormatWSC,
			Aliases: channel.AliasTable{
				channel.F3:     {"F3_M2", "F3_M1", "F3_AVG"},
				channel.C3:     {"C3_M2", "C3_M1"},
				channel.O1:     {"O1_M2", "O1_M1", "O1_AVG"},
				channel.F4:     {"F4_M1"},
				channel.C4:     {"C4_M1", "C4_AVG"},
				channel.O2:     {"O2_M1"},
				channel.EMG:    {"chin", "cchin_l", "rchin_l"},
				channel.EMGref: {"cchin_r"},
			},
		},
		"ISRC": {
			// No annotation reader exists for the ISRC STA layout; subjects
			// decode to empty sequences and are skipped.
			PSGExt: "edf", AnnoExt: "STA", Format: "",
			Aliases: channel.AliasTable{
				channel.C3:  {"C3-A2"},
				channel.C4:  {"C4-A1", "C4-A2"},
				channel.O1:  {"O1-A2"},
				channel.O2:  {"O2-A1", "O2-A2"},
				channel.E1:  {"LOC-A2"},
				channel.E2:  {"ROC-A1", "ROC-A2"},
				channel.EMG: {"EMG1-EMG2"},
			},
		},
		"HomePAP": {
			PSGExt: "edf", AnnoExt: "xml", Format: annotation.FormatProfusion,
			Aliases: nil,
		},
	}
}
