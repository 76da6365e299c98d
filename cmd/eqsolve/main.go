// Command eqsolve решает уравнение √(x + a) = 1/x из командной строки
// и запускает HTTP-сервер с графиками.
package main

func main() {
	Execute()
}
