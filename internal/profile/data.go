package profile

var firstNames = []string{
	"Alice", "Marco", "Sofia", "Lukas", "Emma", "Pedro", "Ines", "Jonas",
	"Clara", "Diego", "Lena", "Mateo", "Nora", "Felix", "Julia", "Andres",
	"Mia", "Tomas", "Laura", "Niklas", "Elena", "Pablo", "Hanna", "Victor",
	"Sara", "Leon", "Marta", "Oscar", "Ida", "Bruno", "Alma", "Hugo",
	"Maja", "Rafael", "Nina", "Simon", "Paula", "Adrian", "Freja", "Erik",
	"Carla", "Jan", "Lucia", "Sven", "Irene", "Milan", "Tessa", "Noah",
}

var lastNames = []string{
	"Almeida", "Berger", "Costa", "Dietrich", "Eriksen", "Ferreira", "Gruber",
	"Hansen", "Ibarra", "Jensen", "Keller", "Lindqvist", "Moreau", "Nielsen",
	"Oliveira", "Petrov", "Quintana", "Richter", "Santos", "Tanaka", "Urbano",
	"Vidal", "Wagner", "Ximenes", "Ybarra", "Zimmermann", "Andersen", "Bakker",
	"Carvalho", "Dubois", "Eklund", "Fischer", "Garza", "Holm", "Iversen",
	"Janssen", "Koch", "Larsen", "Meier", "Novak", "Olsen", "Pires", "Rossi",
	"Silva", "Torres", "Ulrich", "Vargas", "Weber",
}
