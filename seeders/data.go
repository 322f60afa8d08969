package seeders

type statusSeed struct {
	Name      string
	Rank      int
	IsActive  bool
	IsDefault bool
}

var deliveryStatusesData = []statusSeed{
	{Name: "Ordered", Rank: 10, IsActive: true, IsDefault: true},
	{Name: "In Transit", Rank: 20, IsActive: true},
	{Name: "Backordered", Rank: 30, IsActive: true},
	{Name: "Received", Rank: 40, IsActive: false},
	{Name: "Delivered", Rank: 50, IsActive: false},
}

var completionStatusesData = []statusSeed{
	{Name: "Not Started", Rank: 10, IsActive: true, IsDefault: true},
	{Name: "Scheduled", Rank: 20, IsActive: true},
	{Name: "Installed", Rank: 30, IsActive: false},
}

var locationsData = []struct {
	Name      string
	IsDefault bool
}{
	{Name: "Warehouse", IsDefault: true},
	{Name: "Job Site"},
}

var notificationGroupsData = []struct {
	Name           string
	EmailAddresses string
	IsDefault      bool
}{
	{Name: "Office", EmailAddresses: "office@localhost", IsDefault: true},
}
