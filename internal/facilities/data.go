package facilities

import "github.com/rafiq-app/rafiq/internal/geo"

// catalog lists facilities around Masjid al-Haram and Masjid an-Nabawi.
var catalog = []Facility{
	// Masjid al-Haram entrances.
	{ID: "gate1", Type: Entrance, Name: "King Fahd Gate", GateNumber: "1", Coordinate: geo.Coordinate{Latitude: 21.4225, Longitude: 39.8262}},
	{ID: "gate79", Type: Entrance, Name: "King Abdul Aziz Gate", GateNumber: "79", Coordinate: geo.Coordinate{Latitude: 21.4235, Longitude: 39.8255}},
	{ID: "gate5", Type: Entrance, Name: "Al-Salam Gate", GateNumber: "5", Coordinate: geo.Coordinate{Latitude: 21.4218, Longitude: 39.8268}},
	{ID: "gate11", Type: Entrance, Name: "Umrah Gate", GateNumber: "11", Coordinate: geo.Coordinate{Latitude: 21.4242, Longitude: 39.8271}},
	{ID: "gate15", Type: Entrance, Name: "Al-Fath Gate", GateNumber: "15", Coordinate: geo.Coordinate{Latitude: 21.4228, Longitude: 39.8275}},

	// Toilets.
	{ID: "toilet1", Type: Toilet, Name: "Public Toilets - Ground Floor", Coordinate: geo.Coordinate{Latitude: 21.4230, Longitude: 39.8260}},
	{ID: "toilet2", Type: Toilet, Name: "Public Toilets - First Floor", Coordinate: geo.Coordinate{Latitude: 21.4233, Longitude: 39.8264}},
	{ID: "toilet3", Type: Toilet, Name: "Public Toilets - Masa Area", Coordinate: geo.Coordinate{Latitude: 21.4221, Longitude: 39.8253}},

	// Wheelchair access.
	{ID: "wheelchair1", Type: Wheelchair, Name: "Wheelchair Accessible Path - South", Coordinate: geo.Coordinate{Latitude: 21.4228, Longitude: 39.8258}},
	{ID: "wheelchair2", Type: Wheelchair, Name: "Wheelchair Accessible Path - North", Coordinate: geo.Coordinate{Latitude: 21.4238, Longitude: 39.8267}},
	{ID: "wheelchair3", Type: Wheelchair, Name: "Wheelchair Ramp - King Fahd Gate", Coordinate: geo.Coordinate{Latitude: 21.4226, Longitude: 39.8261}},

	// Zamzam water stations.
	{ID: "zamzam1", Type: Zamzam, Name: "Zamzam Water Station - Main", Coordinate: geo.Coordinate{Latitude: 21.4232, Longitude: 39.8263}},
	{ID: "zamzam2", Type: Zamzam, Name: "Zamzam Water Station - East", Coordinate: geo.Coordinate{Latitude: 21.4229, Longitude: 39.8269}},
	{ID: "zamzam3", Type: Zamzam, Name: "Zamzam Water Station - West", Coordinate: geo.Coordinate{Latitude: 21.4224, Longitude: 39.8256}},

	// Women prayer zones.
	{ID: "women1", Type: Women, Name: "Women Prayer Zone - Level 2", Coordinate: geo.Coordinate{Latitude: 21.4227, Longitude: 39.8257}},
	{ID: "women2", Type: Women, Name: "Women Prayer Zone - Level 3", Coordinate: geo.Coordinate{Latitude: 21.4231, Longitude: 39.8265}},

	// Restaurants.
	{ID: "restaurant1", Type: Restaurant, Name: "Al Baik - Ajyad Street", Coordinate: geo.Coordinate{Latitude: 21.4205, Longitude: 39.8283}},
	{ID: "restaurant2", Type: Restaurant, Name: "Hardee's - Ibrahim Al Khalil", Coordinate: geo.Coordinate{Latitude: 21.4198, Longitude: 39.8275}},
	{ID: "restaurant3", Type: Restaurant, Name: "McDonald's - Abraj Al Bait", Coordinate: geo.Coordinate{Latitude: 21.4187, Longitude: 39.8262}},
	{ID: "restaurant4", Type: Restaurant, Name: "KFC - Clock Tower", Coordinate: geo.Coordinate{Latitude: 21.4191, Longitude: 39.8258}},
	{ID: "restaurant5", Type: Restaurant, Name: "Nando's - Haram Area", Coordinate: geo.Coordinate{Latitude: 21.4213, Longitude: 39.8247}},
	{ID: "restaurant6", Type: Restaurant, Name: "Subway - Ajyad", Coordinate: geo.Coordinate{Latitude: 21.4202, Longitude: 39.8279}},
	{ID: "restaurant7", Type: Restaurant, Name: "Al Tazaj - King Fahd Road", Coordinate: geo.Coordinate{Latitude: 21.4176, Longitude: 39.8241}},
	{ID: "restaurant8", Type: Restaurant, Name: "Kudu - Ibrahim Al Khalil", Coordinate: geo.Coordinate{Latitude: 21.4195, Longitude: 39.8268}},

	// Hospitals.
	{ID: "hospital1", Type: Hospital, Name: "Ajyad Emergency Hospital", Coordinate: geo.Coordinate{Latitude: 21.4163, Longitude: 39.8298}},
	{ID: "hospital2", Type: Hospital, Name: "King Abdullah Medical City", Coordinate: geo.Coordinate{Latitude: 21.4052, Longitude: 39.8156}},
	{ID: "hospital3", Type: Hospital, Name: "Hera General Hospital", Coordinate: geo.Coordinate{Latitude: 21.4387, Longitude: 39.8542}},
	{ID: "hospital4", Type: Hospital, Name: "Noor Specialist Hospital", Coordinate: geo.Coordinate{Latitude: 21.4285, Longitude: 39.8178}},
	{ID: "hospital5", Type: Hospital, Name: "Al Noor Specialist Hospital - Makkah", Coordinate: geo.Coordinate{Latitude: 21.3891, Longitude: 39.8579}},
	{ID: "hospital6", Type: Hospital, Name: "Maternity and Children Hospital", Coordinate: geo.Coordinate{Latitude: 21.4125, Longitude: 39.8215}},

	// Bus stops.
	{ID: "bus1", Type: Bus, Name: "Haram Bus Station - King Abdul Aziz Gate", Coordinate: geo.Coordinate{Latitude: 21.4251, Longitude: 39.8243}},
	{ID: "bus2", Type: Bus, Name: "Bus Stop - Ajyad Street", Coordinate: geo.Coordinate{Latitude: 21.4182, Longitude: 39.8291}},
	{ID: "bus3", Type: Bus, Name: "Central Bus Terminal - Makkah", Coordinate: geo.Coordinate{Latitude: 21.3968, Longitude: 39.8521}},
	{ID: "bus4", Type: Bus, Name: "Bus Stop - Ibrahim Al Khalil", Coordinate: geo.Coordinate{Latitude: 21.4172, Longitude: 39.8235}},
	{ID: "bus5", Type: Bus, Name: "Arafat Buses Terminal", Coordinate: geo.Coordinate{Latitude: 21.3542, Longitude: 39.9845}},
	{ID: "bus6", Type: Bus, Name: "Mina Bus Station", Coordinate: geo.Coordinate{Latitude: 21.4118, Longitude: 39.8897}},
	{ID: "bus7", Type: Bus, Name: "Muzdalifah Bus Stop", Coordinate: geo.Coordinate{Latitude: 21.3951, Longitude: 39.9384}},
	{ID: "bus8", Type: Bus, Name: "Bus Stop - Clock Tower", Coordinate: geo.Coordinate{Latitude: 21.4189, Longitude: 39.8254}},

	// Masjid an-Nabawi entrances.
	{ID: "madinah_gate1", Type: Entrance, Name: "Bab Al-Salam - Madinah", GateNumber: "25", Coordinate: geo.Coordinate{Latitude: 24.4672, Longitude: 39.6111}},
	{ID: "madinah_gate2", Type: Entrance, Name: "Bab Jibreel - Madinah", GateNumber: "1", Coordinate: geo.Coordinate{Latitude: 24.4681, Longitude: 39.6105}},
}
