package game

// SquareType is what kind of square a board position is.
type SquareType string

const (
	SquareGo             SquareType = "go"
	SquareStreet         SquareType = "street"
	SquareRailroad       SquareType = "railroad"
	SquareUtility        SquareType = "utility"
	SquareTax            SquareType = "tax"
	SquareChance         SquareType = "chance"
	SquareCommunityChest SquareType = "communitychest"
	SquareJail           SquareType = "jail"
	SquareGoToJail       SquareType = "gotojail"
	SquareFreeParking    SquareType = "freeparking"
)

// ColorGroup groups ownable properties. Railroads and utilities are groups
// too, for counting purposes.
type ColorGroup string

const (
	GroupBrown     ColorGroup = "brown"
	GroupLightBlue ColorGroup = "lightblue"
	GroupPink      ColorGroup = "pink"
	GroupOrange    ColorGroup = "orange"
	GroupRed       ColorGroup = "red"
	GroupYellow    ColorGroup = "yellow"
	GroupGreen     ColorGroup = "green"
	GroupDarkBlue  ColorGroup = "darkblue"
	GroupRailroad  ColorGroup = "railroad"
	GroupUtility   ColorGroup = "utility"
)

// Square is one position on the board. Ownable squares point at a property;
// for the rest Property is -1. Squares never change after setup.
type Square struct {
	Type     SquareType `json:"type"`
	Name     string     `json:"name"`
	Property PropertyId `json:"property"`
	Tax      Money      `json:"tax"`
}

// Property is the immutable configuration of an ownable square. Rents for
// streets are indexed by improvement tier: 0-4 houses, then hotel. The
// ownership state lives separately, per game.
type Property struct {
	Name      string     `json:"name"`
	Group     ColorGroup `json:"group"`
	Square    int        `json:"square"`
	Price     Money      `json:"price"`
	Rents     [6]Money   `json:"rents"`
	Mortgage  Money      `json:"mortgage"`
	HouseCost Money      `json:"houseCost"`
	HotelCost Money      `json:"hotelCost"`
}

// Settings are the fixed amounts of a game.
type Settings struct {
	StartingCash Money `json:"startingCash"`
	Salary       Money `json:"salary"`
	JailFine     Money `json:"jailFine"`
	// InterestPct is charged on top of the mortgage value when unmortgaging.
	InterestPct int `json:"interestPct"`
	// Houses and Hotels are the bank's building stock.
	Houses int `json:"houses"`
	Hotels int `json:"hotels"`
}

// GameData is everything fixed about a game: the board, the decks, the
// amounts. Shared by reference between games, never mutated.
type GameData struct {
	Settings       Settings   `json:"settings"`
	Squares        []Square   `json:"squares"`
	Properties     []Property `json:"properties"`
	Chance         []Card     `json:"chance"`
	CommunityChest []Card     `json:"communityChest"`
}

type boardBuilder struct {
	squares []Square
	props   []Property
}

func (b *boardBuilder) plain(t SquareType, name string) {
	b.squares = append(b.squares, Square{Type: t, Name: name, Property: -1})
}

func (b *boardBuilder) tax(name string, amount Money) {
	b.squares = append(b.squares, Square{Type: SquareTax, Name: name, Property: -1, Tax: amount})
}

func (b *boardBuilder) ownable(t SquareType, p Property) {
	p.Square = len(b.squares)
	id := PropertyId(len(b.props))
	b.props = append(b.props, p)
	b.squares = append(b.squares, Square{Type: t, Name: p.Name, Property: id})
}

func (b *boardBuilder) street(name string, group ColorGroup, price Money, rents [6]Money, houseCost Money) {
	b.ownable(SquareStreet, Property{
		Name:      name,
		Group:     group,
		Price:     price,
		Rents:     rents,
		Mortgage:  price / 2,
		HouseCost: houseCost,
		HotelCost: houseCost,
	})
}

func (b *boardBuilder) railroad(name string) {
	b.ownable(SquareRailroad, Property{
		Name:     name,
		Group:    GroupRailroad,
		Price:    200,
		Rents:    [6]Money{25, 50, 100, 200},
		Mortgage: 100,
	})
}

func (b *boardBuilder) utility(name string) {
	b.ownable(SquareUtility, Property{
		Name:     name,
		Group:    GroupUtility,
		Price:    150,
		Mortgage: 75,
	})
}

// StandardData is the classic board: 40 squares, 28 ownable.
func StandardData() GameData {
	b := &boardBuilder{}

	b.plain(SquareGo, "Go")
	b.street("Mediterranean Ave", GroupBrown, 60, [6]Money{2, 10, 30, 90, 160, 250}, 50)
	b.plain(SquareCommunityChest, "Community Chest")
	b.street("Baltic Ave", GroupBrown, 80, [6]Money{4, 20, 60, 180, 320, 450}, 50)
	b.tax("Income Tax", 200)
	b.railroad("Reading RR")
	b.street("Oriental Ave", GroupLightBlue, 100, [6]Money{6, 30, 90, 270, 400, 550}, 50)
	b.plain(SquareChance, "Chance")
	b.street("Vermont Ave", GroupLightBlue, 100, [6]Money{6, 30, 90, 270, 400, 550}, 50)
	b.street("Connecticut Ave", GroupLightBlue, 120, [6]Money{8, 40, 100, 300, 450, 600}, 50)
	b.plain(SquareJail, "Jail")
	b.street("St. Charles Place", GroupPink, 140, [6]Money{10, 50, 150, 450, 625, 750}, 100)
	b.utility("Electric Company")
	b.street("States Ave", GroupPink, 140, [6]Money{10, 50, 150, 450, 625, 750}, 100)
	b.street("Virginia Ave", GroupPink, 160, [6]Money{12, 60, 180, 500, 700, 900}, 100)
	b.railroad("Pennsylvania RR")
	b.street("St. James Place", GroupOrange, 180, [6]Money{14, 70, 200, 550, 750, 950}, 100)
	b.plain(SquareCommunityChest, "Community Chest")
	b.street("Tennessee Ave", GroupOrange, 180, [6]Money{14, 70, 200, 550, 750, 950}, 100)
	b.street("New York Ave", GroupOrange, 200, [6]Money{16, 80, 220, 600, 800, 1000}, 100)
	b.plain(SquareFreeParking, "Free Parking")
	b.street("Kentucky Ave", GroupRed, 220, [6]Money{18, 90, 250, 700, 875, 1050}, 150)
	b.plain(SquareChance, "Chance")
	b.street("Indiana Ave", GroupRed, 220, [6]Money{18, 90, 250, 700, 875, 1050}, 150)
	b.street("Illinois Ave", GroupRed, 240, [6]Money{20, 100, 300, 750, 925, 1100}, 150)
	b.railroad("B&O RR")
	b.street("Atlantic Ave", GroupYellow, 260, [6]Money{22, 110, 330, 800, 975, 1150}, 150)
	b.street("Ventnor Ave", GroupYellow, 260, [6]Money{22, 110, 330, 800, 975, 1150}, 150)
	b.utility("Water Works")
	b.street("Marvin Gardens", GroupYellow, 280, [6]Money{24, 120, 360, 850, 1025, 1200}, 150)
	b.plain(SquareGoToJail, "Go To Jail")
	b.street("Pacific Ave", GroupGreen, 300, [6]Money{26, 130, 390, 900, 1100, 1275}, 200)
	b.street("North Carolina Ave", GroupGreen, 300, [6]Money{26, 130, 390, 900, 1100, 1275}, 200)
	b.plain(SquareCommunityChest, "Community Chest")
	b.street("Pennsylvania Ave", GroupGreen, 320, [6]Money{28, 150, 450, 1000, 1200, 1400}, 200)
	b.railroad("Short Line")
	b.plain(SquareChance, "Chance")
	b.street("Park Place", GroupDarkBlue, 350, [6]Money{35, 175, 500, 1100, 1300, 1500}, 200)
	b.tax("Luxury Tax", 100)
	b.street("Boardwalk", GroupDarkBlue, 400, [6]Money{50, 200, 600, 1400, 1700, 2000}, 200)

	return GameData{
		Settings: Settings{
			StartingCash: 1500,
			Salary:       200,
			JailFine:     50,
			InterestPct:  10,
			Houses:       32,
			Hotels:       12,
		},
		Squares:        b.squares,
		Properties:     b.props,
		Chance:         standardChance(),
		CommunityChest: standardCommunityChest(),
	}
}
