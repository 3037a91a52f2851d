package export

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/LightBlast-creator/cuex/internal/show"
)

const (
	mvrNamespace = "https://github.com/mvr-development/mvr/wiki/General-Scene-Description-1.6"
	mvrEntryName = "GeneralSceneDescription.xml"
	// Custom devices are pushed back on Y so they never overlap the
	// categorized fixtures lined up along X
	customDeviceYOffsetMM = 2000
	fixtureSpacingMM      = 1000
)

type mvrDocument struct {
	XMLName  xml.Name    `xml:"GeneralSceneDescription"`
	Xmlns    string      `xml:"xmlns,attr"`
	VerMajor int         `xml:"verMajor,attr"`
	VerMinor int         `xml:"verMinor,attr"`
	UserData mvrUserData `xml:"UserData"`
	Scene    mvrScene    `xml:"Scene"`
}

type mvrUserData struct {
	Data mvrProviderData `xml:"Data"`
}

type mvrProviderData struct {
	Provider string `xml:"provider,attr"`
	Ver      string `xml:"ver,attr"`
}

type mvrScene struct {
	Layers mvrLayers `xml:"Layers"`
}

type mvrLayers struct {
	Layer []mvrLayer `xml:"Layer"`
}

type mvrLayer struct {
	Name      string       `xml:"name,attr"`
	UUID      string       `xml:"uuid,attr"`
	ChildList mvrChildList `xml:"ChildList"`
}

type mvrChildList struct {
	Fixtures []mvrFixture `xml:"Fixture"`
}

type mvrFixture struct {
	Name      string        `xml:"name,attr"`
	UUID      string        `xml:"uuid,attr"`
	FixtureID string        `xml:"fixtureId,attr"`
	GDTFSpec  string        `xml:"gdtfSpec,attr"`
	GDTFMode  string        `xml:"gdtfMode,attr"`
	Matrix    string        `xml:"Matrix"`
	Addresses *mvrAddresses `xml:"Addresses,omitempty"`
}

type mvrAddresses struct {
	Address mvrAddress `xml:"Address"`
}

type mvrAddress struct {
	Break    string `xml:"break,attr"`
	Universe string `xml:"universe,attr"`
	Address  string `xml:"address,attr"`
}

// placeholderUUID derives a deterministic fixture UUID from its index so
// re-exports of the same rig are byte-identical
func placeholderUUID(index int) string {
	return fmt.Sprintf("00000000-0000-0000-0000-%012d", index)
}

// fixtureMatrix is an identity rotation translated along X (and
// optionally Y), flattened the way the MVR spec expects, in millimetres
func fixtureMatrix(x, y, z int) string {
	return fmt.Sprintf(
		"1.000000 0.000000 0.000000 0.000000 "+
			"0.000000 1.000000 0.000000 0.000000 "+
			"0.000000 0.000000 1.000000 0.000000 "+
			"%d.000000 %d.000000 %d.000000 1.000000",
		x, y, z)
}

func gdtfSpecName(manufacturer, model string) string {
	name := strings.TrimSpace(strings.TrimSpace(manufacturer) + " " + strings.TrimSpace(model))
	if name == "" {
		name = "Generic Fixture"
	}
	return name + ".gdtf"
}

func mvrFixtureFromItem(it show.RigItem, displayName string, index int, yOffset int) mvrFixture {
	fix := mvrFixture{
		Name:      displayName,
		UUID:      placeholderUUID(index),
		FixtureID: fmt.Sprintf("%d", index),
		GDTFSpec:  gdtfSpecName(it.Manufacturer, it.Model),
		GDTFMode:  it.Mode,
		Matrix:    fixtureMatrix((index-1)*fixtureSpacingMM, yOffset, 0),
	}

	uni := strings.TrimSpace(it.Universe)
	addr := strings.TrimSpace(it.Address)
	if uni != "" && addr != "" {
		fix.Addresses = &mvrAddresses{
			Address: mvrAddress{Break: "1", Universe: uni, Address: addr},
		}
	}
	return fix
}

// capitalize uppercases the first byte of an ASCII category name
func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// MVR encodes the rig inventory as an MVR scene: a zip container holding
// a single GeneralSceneDescription.xml. Every counted fixture instance
// becomes one Fixture element; missing manufacturer, model or address
// data degrades to placeholders, never to a failure.
func (e *Encoder) MVR(s *show.Show) (*Artifact, error) {
	rig := s.RigSetup
	if rig == nil {
		rig = &show.RigSetup{}
	}

	var fixtures []mvrFixture
	index := 1

	for _, cat := range rig.Categories() {
		for _, it := range cat.Items {
			count := itemCount(it.Count)
			for i := 0; i < count; i++ {
				name := fmt.Sprintf("%s %d", capitalize(cat.Name), i+1)
				if m := strings.TrimSpace(it.Model); m != "" {
					name = fmt.Sprintf("%s %d", m, i+1)
				}
				fixtures = append(fixtures, mvrFixtureFromItem(it, name, index, 0))
				index++
			}
		}
	}

	for _, cd := range rig.CustomDevices {
		count := itemCount(cd.Count)
		for i := 0; i < count; i++ {
			name := strings.TrimSpace(cd.Name)
			if name == "" {
				name = fmt.Sprintf("Custom %d", index)
			}
			fixtures = append(fixtures, mvrFixtureFromItem(cd.RigItem, name, index, customDeviceYOffsetMM))
			index++
		}
	}

	doc := mvrDocument{
		Xmlns:    mvrNamespace,
		VerMajor: 1,
		VerMinor: 6,
		UserData: mvrUserData{
			Data: mvrProviderData{Provider: e.provider, Ver: e.version},
		},
		Scene: mvrScene{
			Layers: mvrLayers{
				Layer: []mvrLayer{{
					Name:      "Rig",
					UUID:      "00000000-0000-0000-0000-000000000001",
					ChildList: mvrChildList{Fixtures: fixtures},
				}},
			},
		},
	}

	xmlBody, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal scene description: %w", err)
	}
	xmlData := append([]byte(xml.Header), xmlBody...)

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	entry, err := zw.CreateHeader(&zip.FileHeader{Name: mvrEntryName, Method: zip.Deflate})
	if err != nil {
		return nil, fmt.Errorf("failed to create zip entry: %w", err)
	}
	if _, err := entry.Write(xmlData); err != nil {
		return nil, fmt.Errorf("failed to write scene description: %w", err)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize mvr container: %w", err)
	}

	return &Artifact{
		Filename:    safeFilename(s.Name) + ".mvr",
		ContentType: "application/zip",
		Data:        buf.Bytes(),
	}, nil
}
